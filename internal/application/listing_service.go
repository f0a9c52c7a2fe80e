package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/rcmp123/marketplace/internal/domain/entity"
	repo "github.com/rcmp123/marketplace/internal/domain/repository"
	"github.com/rcmp123/marketplace/pkg/helpers"
)

var (
	ErrImageRequired   = errors.New("image is required")
	ErrInvalidPrice    = errors.New("price must be a finite number")
	ErrListingNotFound = errors.New("listing not found")
)

const defaultImageContentType = "application/octet-stream"

// ImageUpload is the uploaded file as received from the client.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

type CreateListingInput struct {
	Title       string
	Description string
	Price       float64
	SellerID    int64
	Image       *ImageUpload
}

type ListingService struct {
	Store  repo.Store
	Images repo.ImageStore
	Events EventPublisher
	Logger logrus.FieldLogger
}

func NewListingService(store repo.Store, images repo.ImageStore, events EventPublisher, logger logrus.FieldLogger) *ListingService {
	return &ListingService{Store: store, Images: images, Events: events, Logger: logger}
}

// CreateListing stores the image first and inserts the row only once the image
// is fully written. If the insert fails the stored image is left in place.
// SellerID is not checked against existing users.
func (s *ListingService) CreateListing(ctx context.Context, in CreateListingInput) (*entity.Listing, error) {
	if math.IsNaN(in.Price) || math.IsInf(in.Price, 0) {
		return nil, ErrInvalidPrice
	}
	if in.Image == nil || in.Image.Content == nil {
		return nil, ErrImageRequired
	}
	contentType := in.Image.ContentType
	if contentType == "" {
		contentType = defaultImageContentType
	}

	name := NewImageName(in.Image.Filename)
	imagePath, err := s.Images.Save(ctx, name, contentType, in.Image.Size, in.Image.Content)
	if err != nil {
		metrics.Add("image_writes_failed", 1)
		return nil, fmt.Errorf("store image: %w", err)
	}

	l := &entity.Listing{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		SellerID:    in.SellerID,
		ImagePath:   imagePath,
		Sold:        false,
	}
	err = s.Store.WithTx(ctx, func(tx repo.Tx) error {
		return tx.Listings().Create(ctx, l)
	})
	if err != nil {
		metrics.Add("images_orphaned", 1)
		helpers.LogWarn(s.Logger, "listing insert failed; stored image is orphaned", err, logrus.Fields{
			"image_path": imagePath,
			"request_id": helpers.RequestIDFromContext(ctx),
		})
		return nil, fmt.Errorf("create listing: %w", err)
	}

	metrics.Add("listings_created", 1)
	s.Logger.WithFields(logrus.Fields{
		"listing_id": l.ID,
		"seller_id":  l.SellerID,
		"image_path": l.ImagePath,
	}).Info("listing created")
	publish(ctx, s.Events, s.Logger, entity.Event{Type: entity.EventListingCreated, Listing: l})
	return l, nil
}

func (s *ListingService) GetListing(ctx context.Context, id int64) (*entity.Listing, error) {
	l, err := s.Store.Listings().GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return l, nil
}
