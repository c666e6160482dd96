package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"medcontrol-backend/internal/models"
	"medcontrol-backend/internal/repository"
)

type ProcedureTypeInput struct {
	Name           string
	Description    *string
	ReferencePrice decimal.Decimal
	Active         *bool
}

type ProcedureTypePatch struct {
	Name           *string
	Description    *string
	ReferencePrice *decimal.Decimal
	Active         *bool
}

type ProcedureTypeDetail struct {
	models.ProcedureType
	Stats EntityStats `json:"stats"`
}

type ProcedureTypeService struct {
	typeRepo      *repository.ProcedureTypeRepository
	procedureRepo *repository.ProcedureRepository
	auditRepo     *repository.AuditRepository
}

func NewProcedureTypeService(
	typeRepo *repository.ProcedureTypeRepository,
	procedureRepo *repository.ProcedureRepository,
	auditRepo *repository.AuditRepository,
) *ProcedureTypeService {
	return &ProcedureTypeService{
		typeRepo:      typeRepo,
		procedureRepo: procedureRepo,
		auditRepo:     auditRepo,
	}
}

func (s *ProcedureTypeService) List(ctx context.Context, f repository.ListFilter) ([]models.ProcedureType, error) {
	return s.typeRepo.ListProcedureTypes(ctx, f)
}

func (s *ProcedureTypeService) Get(ctx context.Context, id uint) (*ProcedureTypeDetail, error) {
	pt, err := s.typeRepo.GetProcedureTypeByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "procedure type not found")
	}
	stats, err := procedureStats(ctx, s.procedureRepo, repository.OwnerProcedureType, id)
	if err != nil {
		return nil, err
	}
	return &ProcedureTypeDetail{ProcedureType: *pt, Stats: stats}, nil
}

func (s *ProcedureTypeService) Procedures(ctx context.Context, id uint, skip, limit int) ([]models.Procedure, error) {
	if _, err := s.typeRepo.GetProcedureTypeByID(ctx, id); err != nil {
		return nil, lookup(err, "procedure type not found")
	}
	return s.procedureRepo.ListByOwner(ctx, repository.OwnerProcedureType, id, skip, limit)
}

func (s *ProcedureTypeService) Create(ctx context.Context, actor *models.User, in ProcedureTypeInput) (*models.ProcedureType, error) {
	pt := &models.ProcedureType{}
	if err := applyProcedureTypeInput(pt, in); err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, pt.Name, 0); err != nil {
		return nil, err
	}
	if err := s.typeRepo.CreateProcedureType(ctx, pt); err != nil {
		return nil, errors.Wrap(err, "create procedure type")
	}

	recordAudit(ctx, s.auditRepo, actor, "procedure_type_create", fmt.Sprintf("Procedure type %d (%s) created", pt.ID, pt.Name))
	return pt, nil
}

func (s *ProcedureTypeService) Replace(ctx context.Context, actor *models.User, id uint, in ProcedureTypeInput) (*models.ProcedureType, error) {
	pt, err := s.typeRepo.GetProcedureTypeByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "procedure type not found")
	}
	if err := applyProcedureTypeInput(pt, in); err != nil {
		return nil, err
	}
	return s.save(ctx, actor, pt)
}

func (s *ProcedureTypeService) Patch(ctx context.Context, actor *models.User, id uint, p ProcedureTypePatch) (*models.ProcedureType, error) {
	pt, err := s.typeRepo.GetProcedureTypeByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "procedure type not found")
	}

	if p.Name != nil {
		pt.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		pt.Description = optionalString(p.Description)
	}
	if p.ReferencePrice != nil {
		if p.ReferencePrice.IsNegative() {
			return nil, invalidf("reference price cannot be negative")
		}
		pt.ReferencePrice = p.ReferencePrice.Round(2)
	}
	if p.Active != nil {
		pt.Active = *p.Active
	}
	return s.save(ctx, actor, pt)
}

func (s *ProcedureTypeService) save(ctx context.Context, actor *models.User, pt *models.ProcedureType) (*models.ProcedureType, error) {
	if err := s.checkName(ctx, pt.Name, pt.ID); err != nil {
		return nil, err
	}
	if err := s.typeRepo.UpdateProcedureType(ctx, pt); err != nil {
		return nil, errors.Wrap(err, "update procedure type")
	}

	recordAudit(ctx, s.auditRepo, actor, "procedure_type_update", fmt.Sprintf("Procedure type %d updated", pt.ID))
	return pt, nil
}

func (s *ProcedureTypeService) checkName(ctx context.Context, name string, excludeID uint) error {
	taken, err := s.typeRepo.NameTaken(ctx, name, excludeID)
	if err != nil {
		return errors.Wrap(err, "check procedure type name")
	}
	if taken {
		return conflictf("procedure type %q already exists", name)
	}
	return nil
}

// Delete deactivates a procedure type, or removes it when force is set and
// no procedure uses it.
func (s *ProcedureTypeService) Delete(ctx context.Context, actor *models.User, id uint, force bool) error {
	if _, err := s.typeRepo.GetProcedureTypeByID(ctx, id); err != nil {
		return lookup(err, "procedure type not found")
	}

	if !force {
		if err := s.typeRepo.SoftDeleteProcedureType(ctx, id); err != nil {
			return errors.Wrap(err, "deactivate procedure type")
		}
		recordAudit(ctx, s.auditRepo, actor, "procedure_type_deactivate", fmt.Sprintf("Procedure type %d deactivated", id))
		return nil
	}

	count, err := s.procedureRepo.CountByOwner(ctx, repository.OwnerProcedureType, id)
	if err != nil {
		return errors.Wrap(err, "count procedures")
	}
	if count > 0 {
		return conflictf("cannot delete: procedure type has %d procedure(s) linked", count)
	}
	if err := s.typeRepo.DeleteProcedureType(ctx, id); err != nil {
		return errors.Wrap(err, "delete procedure type")
	}
	recordAudit(ctx, s.auditRepo, actor, "procedure_type_delete", fmt.Sprintf("Procedure type %d deleted", id))
	return nil
}

func applyProcedureTypeInput(pt *models.ProcedureType, in ProcedureTypeInput) error {
	if in.ReferencePrice.IsNegative() {
		return invalidf("reference price cannot be negative")
	}
	pt.Name = strings.TrimSpace(in.Name)
	pt.Description = optionalString(in.Description)
	pt.ReferencePrice = in.ReferencePrice.Round(2)
	pt.Active = boolOr(in.Active, true)
	return nil
}
