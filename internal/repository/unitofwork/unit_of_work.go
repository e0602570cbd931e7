package unitofwork

import (
	"fitai-planner-be/internal/repository/contract"
)

// UnitOfWork hands out repositories bound to one request's connection.
type UnitOfWork interface {
	PlanRepository() contract.PlanRepository
}
