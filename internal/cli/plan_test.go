package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fitai-planner-be/internal/config"
	"fitai-planner-be/internal/dto"
	"fitai-planner-be/internal/service"
	"fitai-planner-be/pkg/planner"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPlanService struct {
	generated *dto.GeneratePlanRequest
	corrected *dto.CorrectPlanRequest
	listed    *dto.ListPlansRequest
}

func (s *stubPlanService) Generate(ctx context.Context, req *dto.GeneratePlanRequest) (*dto.GeneratePlanResponse, error) {
	s.generated = req
	return &dto.GeneratePlanResponse{PlanResponse: dto.PlanResponse{UserId: req.UserId}, SessionId: "s-1"}, nil
}

func (s *stubPlanService) Correct(ctx context.Context, req *dto.CorrectPlanRequest) (*dto.CorrectPlanResponse, error) {
	s.corrected = req
	return &dto.CorrectPlanResponse{CorrectionApplied: req.Instruction, PlanType: req.PlanType}, nil
}

func (s *stubPlanService) Show(ctx context.Context, id uuid.UUID) (*dto.PlanResponse, error) {
	return nil, planner.ErrPlanNotFound
}

func (s *stubPlanService) List(ctx context.Context, req *dto.ListPlansRequest) (*dto.ListPlansResponse, error) {
	s.listed = req
	return &dto.ListPlansResponse{Items: []*dto.PlanResponse{
		{Id: uuid.New(), UserId: "user-1", CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
	}}, nil
}

func (s *stubPlanService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func useStub(t *testing.T) *stubPlanService {
	t.Helper()

	stub := &stubPlanService{}
	original := newPlanService
	newPlanService = func(*config.Config) (service.IPlanService, func(), error) {
		return stub, func() {}, nil
	}
	t.Cleanup(func() { newPlanService = original })
	return stub
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGenerateCmd_ReadsProfileFile(t *testing.T) {
	stub := useStub(t)

	path := filepath.Join(t.TempDir(), "profile.txt")
	require.NoError(t, os.WriteFile(path, []byte("  34 y/o, 80kg, lose fat\n"), 0o600))

	out, err := run(t, "generate", "--user", "user-1", "--profile-file", path)
	require.NoError(t, err)

	assert.Equal(t, "34 y/o, 80kg, lose fat", stub.generated.Profile)
	assert.Contains(t, out, `"session_id": "s-1"`)
}

func TestPlanCommands(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
		check   func(t *testing.T, stub *stubPlanService, out string)
	}{
		{
			name: "generate without profile fails validation",
			args: []string{"generate", "--user", "user-1"},
			check: func(t *testing.T, stub *stubPlanService, out string) {
				assert.Nil(t, stub.generated)
			},
		},
		{
			name: "correct normalizes target",
			args: []string{"correct", "--user", "user-1", "--instruction", "no dairy", "--target", "MEAL"},
			check: func(t *testing.T, stub *stubPlanService, out string) {
				require.NotNil(t, stub.corrected)
				assert.Equal(t, "meal", stub.corrected.PlanType)
				assert.Contains(t, out, `"correction_applied": "no dairy"`)
			},
		},
		{
			name: "correct rejects unknown target",
			args: []string{"correct", "--user", "user-1", "--instruction", "x", "--target", "sleep"},
			check: func(t *testing.T, stub *stubPlanService, out string) {
				assert.Nil(t, stub.corrected)
			},
		},
		{
			name:    "show reports missing plan",
			args:    []string{"show", "--id", uuid.NewString()},
			wantErr: planner.ErrPlanNotFound,
		},
		{
			name: "list passes paging flags",
			args: []string{"list", "--user", "user-1", "--limit", "5", "--offset", "10"},
			check: func(t *testing.T, stub *stubPlanService, out string) {
				require.NotNil(t, stub.listed)
				assert.Equal(t, dto.ListPlansRequest{UserId: "user-1", Limit: 5, Offset: 10}, *stub.listed)
				assert.Contains(t, out, "2026-03-01 09:00:00")
				assert.Contains(t, out, "1 plan(s)")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := useStub(t)

			out, err := run(t, tt.args...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, stub, out)
			}
		})
	}
}
