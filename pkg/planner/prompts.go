package planner

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Prompts holds the system instructions of each stage and the response-format
// directive appended to artifact requests. The directive is passed through
// verbatim and never parsed.
type Prompts struct {
	Reasoning      string `yaml:"reasoning"`
	Workout        string `yaml:"workout"`
	Meal           string `yaml:"meal"`
	ResponseFormat string `yaml:"response_format"`
}

const defaultReasoningPrompt = `You are a health systems analyst and exercise science researcher.
Analyze the client profile and write TASK INSTRUCTIONS for a workout planner and a meal planner.

Work through:
1. Risk stratification (count CVD risk factors: age, family history, hypertension, dyslipidemia,
   diabetes, BMI >= 30, sedentary lifestyle, smoking) and report LOW, MODERATE or HIGH.
2. Which task categories apply: safety and medical, physiological optimization,
   constraint-driven adaptation, behavioral adherence, progression and plateaus.
3. What the planners must evaluate, include and avoid.
4. Conflict resolution in priority order: safety, medical constraints, adherence,
   physiological optimization, user preferences.
5. Monitoring triggers and red flags.

Do not write the plans themselves, name specific exercises or recipes.
Return a JSON object with a "summary" field holding the instructions as markdown.`

const defaultWorkoutPrompt = `You are a certified personal trainer and exercise physiologist following ACSM guidelines.
You receive the client PROFILE and TASK instructions from an analyst. Build an evidence-based
training program that follows the TASK exactly using FITT-VP principles. Be specific with sets,
reps, rest and intensity (RPE or percent of 1RM). Safety comes first.

Return a single JSON object with at least:
  "summary": short human readable overview,
  "name", "description", "plan_type", "duration_weeks",
  "sessions": [{"session_name", "week_number", "day_number", "session_type",
                "exercises": [{"name", "sets", "reps", "rest_seconds", "notes"}]}]`

const defaultMealPrompt = `You are a registered dietitian and sports nutritionist.
You receive the client PROFILE and TASK instructions from an analyst. Build a nutrition plan that
follows the TASK exactly: estimate TDEE, set a calorie target and macro targets in grams, plan meal
timing and account for medical conditions and dietary restrictions.

Return a single JSON object with at least:
  "summary": short human readable overview,
  "daily_calories", "macros": {"protein_g", "carbs_g", "fat_g"},
  "meals": [{"name", "time", "foods": [], "calories"}]`

const defaultResponseFormat = `OUTPUT FORMAT:
- Section 1: Assumptions - state what you assume about this client
- Section 2: Scientific Rationale - the evidence-based principles behind the plan
- Section 3: Recommendations - specific, actionable program details
- Section 4: Expected Outcomes - realistic 12-week outcomes
- Section 5: Risk Mitigation - safety considerations and injury prevention
Put these sections inside the JSON "summary" field.`

func DefaultPrompts() Prompts {
	return Prompts{
		Reasoning:      defaultReasoningPrompt,
		Workout:        defaultWorkoutPrompt,
		Meal:           defaultMealPrompt,
		ResponseFormat: defaultResponseFormat,
	}
}

// LoadPrompts reads YAML overrides from path on top of DefaultPrompts.
// Missing keys keep their default. An empty path returns the defaults.
func LoadPrompts(path string) (Prompts, error) {
	p := DefaultPrompts()
	if path == "" {
		return p, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read prompts file: %w", err)
	}

	var override Prompts
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return p, fmt.Errorf("parse prompts file %s: %w", path, err)
	}

	if strings.TrimSpace(override.Reasoning) != "" {
		p.Reasoning = override.Reasoning
	}
	if strings.TrimSpace(override.Workout) != "" {
		p.Workout = override.Workout
	}
	if strings.TrimSpace(override.Meal) != "" {
		p.Meal = override.Meal
	}
	if strings.TrimSpace(override.ResponseFormat) != "" {
		p.ResponseFormat = override.ResponseFormat
	}
	return p, nil
}

// System returns the system instructions for a stage.
func (p Prompts) System(role StageRole) string {
	switch role {
	case StageReasoning:
		return p.Reasoning
	case StageWorkout:
		return p.Workout
	case StageMeal:
		return p.Meal
	}
	return ""
}

func reasoningInput(profile string) string {
	var b strings.Builder
	b.WriteString("Analyze the following client profile and write task instructions for the workout and meal planners.\n\n")
	b.WriteString("PROFILE:\n")
	b.WriteString(profile)
	b.WriteString("\n\nCover pre-participation assessment, exercise prescription, nutrition prescription, ")
	b.WriteString("behavior and lifestyle, and monitoring. Do not create the plans.\n")
	return b.String()
}

func artifactInput(profile, reasoning, responseFormat string) string {
	var b strings.Builder
	b.WriteString("PROFILE:\n")
	b.WriteString(profile)
	b.WriteString("\n\nTASK:\n")
	b.WriteString(reasoning)
	b.WriteString("\n\n")
	b.WriteString(responseFormat)
	b.WriteString("\n")
	return b.String()
}

func correctionInput(role StageRole, userId, profile, current, instruction string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The user wants to correct their %s plan.\n\n", role)
	fmt.Fprintf(&b, "USER ID: %s\n", userId)
	fmt.Fprintf(&b, "USER PROFILE:\n%s\n\n", profile)
	fmt.Fprintf(&b, "CURRENT %s PLAN:\n%s\n\n", strings.ToUpper(string(role)), current)
	fmt.Fprintf(&b, "CORRECTION INSTRUCTION:\n%s\n\n", instruction)
	b.WriteString("Apply the correction while keeping exactly the same JSON structure.\n")
	fmt.Fprintf(&b, "Return ONLY the corrected JSON %s plan.\n", role)
	return b.String()
}
