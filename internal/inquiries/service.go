package inquiries

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/greenshield-crm/greenshield-crm/internal/clients"
	"github.com/greenshield-crm/greenshield-crm/internal/jobcards"
	"github.com/greenshield-crm/greenshield-crm/internal/shared"
)

// RepositoryPort defines data access methods for inquiries.
type RepositoryPort interface {
	Create(ctx context.Context, inquiry Inquiry) (*Inquiry, error)
	Get(ctx context.Context, id int64) (*Inquiry, error)
	GetByReference(ctx context.Context, reference string) (*Inquiry, error)
	List(ctx context.Context, req ListInquiriesRequest) ([]Inquiry, int, error)
	UpdateStatus(ctx context.Context, id int64, status InquiryStatus) error
	MarkConverted(ctx context.Context, id, jobCardID int64) error
}

// ClientResolver deduplicates intake contacts into the client registry.
type ClientResolver interface {
	FindOrCreate(ctx context.Context, name, rawMobile string, email, city *string) (*clients.Client, bool, error)
}

// JobCardCreator opens job cards from converted inquiries.
type JobCardCreator interface {
	Create(ctx context.Context, req jobcards.CreateJobCardRequest) (*jobcards.JobCard, error)
}

// Service handles inquiry intake and conversion.
type Service struct {
	repo      RepositoryPort
	clients   ClientResolver
	jobCards  JobCardCreator
	scheduler jobcards.RenewalScheduler
	logger    *slog.Logger
}

// NewService builds Service instance. scheduler may be nil.
func NewService(repo RepositoryPort, resolver ClientResolver, creator JobCardCreator, scheduler jobcards.RenewalScheduler, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		clients:   resolver,
		jobCards:  creator,
		scheduler: scheduler,
		logger:    logger,
	}
}

// Create records a public inquiry. The mobile number is normalized up
// front so a later conversion dedupes against the client registry, and the
// caller only ever learns the opaque reference token.
func (s *Service) Create(ctx context.Context, req CreateInquiryRequest) (*Inquiry, error) {
	name := strings.TrimSpace(req.FullName)
	if name == "" {
		return nil, fmt.Errorf("%w: full name", shared.ErrRequiredField)
	}
	mobile, err := clients.NormalizeMobile(req.Mobile)
	if err != nil {
		return nil, err
	}
	serviceType := strings.TrimSpace(req.ServiceType)
	if serviceType == "" {
		return nil, fmt.Errorf("%w: service type", shared.ErrRequiredField)
	}

	inquiry := Inquiry{
		Reference:   uuid.NewString(),
		FullName:    name,
		Mobile:      mobile,
		Email:       req.Email,
		City:        req.City,
		ServiceType: serviceType,
		Message:     req.Message,
		Status:      StatusNew,
	}

	created, err := s.repo.Create(ctx, inquiry)
	if err != nil {
		return nil, fmt.Errorf("create inquiry: %w", err)
	}
	return created, nil
}

// Get returns an inquiry by id.
func (s *Service) Get(ctx context.Context, id int64) (*Inquiry, error) {
	return s.repo.Get(ctx, id)
}

// GetByReference returns an inquiry by its public reference token.
func (s *Service) GetByReference(ctx context.Context, reference string) (*Inquiry, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, fmt.Errorf("%w: reference", shared.ErrRequiredField)
	}
	return s.repo.GetByReference(ctx, reference)
}

// List returns inquiries matching the filter.
func (s *Service) List(ctx context.Context, req ListInquiriesRequest) ([]Inquiry, int, error) {
	return s.repo.List(ctx, req)
}

// UpdateStatus moves an inquiry through its lifecycle. Converted is a
// terminal state reachable only through ConvertToJobCard.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status InquiryStatus) (*Inquiry, error) {
	switch status {
	case StatusNew, StatusContacted, StatusClosed:
	case StatusConverted:
		return nil, fmt.Errorf("%w: conversion requires a job card", shared.ErrInvalidInput)
	default:
		return nil, fmt.Errorf("%w: inquiry status %q", shared.ErrInvalidInput, status)
	}

	inquiry, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inquiry.Status == StatusConverted {
		return nil, fmt.Errorf("%w: inquiry %d is already converted", shared.ErrInvalidInput, id)
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update inquiry status: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// ConvertToJobCard turns an accepted inquiry into a client plus job card.
// The contact dedupes through the registry, so converting two inquiries
// with the same mobile number reuses one client row. Renewal scheduling is
// attempted but never fails the conversion.
func (s *Service) ConvertToJobCard(ctx context.Context, id int64, req ConvertInquiryRequest) (*jobcards.JobCard, error) {
	inquiry, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inquiry.Status == StatusConverted {
		return nil, fmt.Errorf("%w: inquiry %d is already converted", shared.ErrInvalidInput, id)
	}

	client, _, err := s.clients.FindOrCreate(ctx, inquiry.FullName, inquiry.Mobile, inquiry.Email, inquiry.City)
	if err != nil {
		return nil, fmt.Errorf("resolve client: %w", err)
	}

	job, err := s.jobCards.Create(ctx, jobcards.CreateJobCardRequest{
		ClientID:             client.ID,
		Kind:                 jobcards.JobKind(req.Kind),
		ServiceType:          inquiry.ServiceType,
		ScheduleDate:         req.ScheduleDate,
		NextServiceDate:      req.NextServiceDate,
		ContractLengthMonths: req.ContractLengthMonths,
		TechnicianName:       req.TechnicianName,
		PriceSubtotal:        req.PriceSubtotal,
		TaxPercent:           req.TaxPercent,
		Notes:                inquiry.Message,
	})
	if err != nil {
		return nil, fmt.Errorf("create job card: %w", err)
	}

	if err := s.repo.MarkConverted(ctx, id, job.ID); err != nil {
		return nil, fmt.Errorf("mark inquiry converted: %w", err)
	}

	if s.scheduler != nil {
		job.ClientName = client.FullName
		if err := s.scheduler.ScheduleForJob(ctx, *job, false); err != nil {
			s.logger.Warn("renewal scheduling failed after conversion",
				slog.String("job_code", job.Code), slog.Any("error", err))
		}
	}
	return job, nil
}
