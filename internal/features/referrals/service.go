// Package referrals: service.go holds the business rules for products and
// share requests. Companies publish, staff moderate, individuals share.
package referrals

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/globalcluster/referral-backend/internal/common"
)

// Store is the storage surface the service needs. *Repository implements
// it; tests use an in-memory fake.
type Store interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context, status string) ([]*Product, error)
	SetProductStatus(ctx context.Context, id uuid.UUID, status string) error
	IncrementTraffic(ctx context.Context, id uuid.UUID) error
	CreateShareRequest(ctx context.Context, userID, productID uuid.UUID) (*ShareRequest, error)
	ApproveShareRequest(ctx context.Context, id int64) error
	RejectShareRequest(ctx context.Context, id int64) error
	GetRanking(ctx context.Context, userID uuid.UUID) (*UserRanking, error)
	ListRankings(ctx context.Context) ([]*UserRanking, error)
}

// Service manages products, share requests and ranking reads.
type Service struct {
	repo Store
}

// NewService creates the referrals service.
func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

// CreateProduct publishes a product on behalf of a company. New products
// start pending until staff activate them.
func (s *Service) CreateProduct(ctx context.Context, companyID uuid.UUID, name, description, value, link string) (*Product, error) {
	if value == "" {
		value = ValueWebsite
	}

	p := &Product{
		ID:           uuid.New(),
		ProductName:  name,
		CompanyID:    companyID,
		Description:  description,
		ProductValue: value,
		ProductLink:  link,
		Status:       ProductPending,
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"product_id": p.ID, "company_id": companyID}).Info("Product submitted")
	return p, nil
}

// GetProduct returns one product.
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// ListActiveProducts returns the products members can share.
func (s *Service) ListActiveProducts(ctx context.Context) ([]*Product, error) {
	return s.repo.ListProducts(ctx, ProductActive)
}

// ListProducts returns every product. Staff only.
func (s *Service) ListProducts(ctx context.Context, isStaff bool) ([]*Product, error) {
	if !isStaff {
		return nil, common.ErrNotStaff
	}
	return s.repo.ListProducts(ctx, "")
}

// ApproveProduct activates a pending product. Staff only.
func (s *Service) ApproveProduct(ctx context.Context, isStaff bool, id uuid.UUID) error {
	if !isStaff {
		return common.ErrNotStaff
	}
	if err := s.repo.SetProductStatus(ctx, id, ProductActive); err != nil {
		return err
	}
	log.WithField("product_id", id).Info("Product activated")
	return nil
}

// DeclineProduct rejects a product. Staff only.
func (s *Service) DeclineProduct(ctx context.Context, isStaff bool, id uuid.UUID) error {
	if !isStaff {
		return common.ErrNotStaff
	}
	return s.repo.SetProductStatus(ctx, id, ProductDeclined)
}

// RecordTraffic counts one click-through on a product's link.
func (s *Service) RecordTraffic(ctx context.Context, id uuid.UUID) error {
	return s.repo.IncrementTraffic(ctx, id)
}

// RequestShare files a member's claim that they shared a product. The
// claim sits pending until staff approve it.
func (s *Service) RequestShare(ctx context.Context, userID, productID uuid.UUID) (*ShareRequest, error) {
	p, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Status != ProductActive {
		return nil, common.ErrProductNotFound
	}
	return s.repo.CreateShareRequest(ctx, userID, productID)
}

// ApproveShare confirms a share request. Staff only.
func (s *Service) ApproveShare(ctx context.Context, isStaff bool, requestID int64) error {
	if !isStaff {
		return common.ErrNotStaff
	}
	if err := s.repo.ApproveShareRequest(ctx, requestID); err != nil {
		return err
	}
	log.WithField("request_id", requestID).Info("Share request approved")
	return nil
}

// RejectShare declines a share request. Staff only.
func (s *Service) RejectShare(ctx context.Context, isStaff bool, requestID int64) error {
	if !isStaff {
		return common.ErrNotStaff
	}
	return s.repo.RejectShareRequest(ctx, requestID)
}

// Ranking returns a member's current tier.
func (s *Service) Ranking(ctx context.Context, userID uuid.UUID) (*UserRanking, error) {
	return s.repo.GetRanking(ctx, userID)
}

// Leaderboard returns every enabled ranking, highest first.
func (s *Service) Leaderboard(ctx context.Context) ([]*UserRanking, error) {
	return s.repo.ListRankings(ctx)
}
