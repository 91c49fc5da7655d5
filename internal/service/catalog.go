package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"unlockmart/internal/model"
)

// CatalogService is a read-mostly view over the services table. Editing the
// catalog is an admin concern; ordering only ever reads it.
type CatalogService struct {
	db *sql.DB
}

func NewCatalogService(db *sql.DB) *CatalogService {
	return &CatalogService{db: db}
}

const serviceColumns = `id, name, description, price_cents, category, delivery_time, required_fields, created_at`

func scanService(row rowScanner) (*model.Service, error) {
	var (
		s      model.Service
		cents  int64
		fields string
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &cents, &s.Category, &s.DeliveryTime, &fields, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.Price = model.FromCents(cents)
	if err := json.Unmarshal([]byte(fields), &s.RequiredFields); err != nil {
		return nil, fmt.Errorf("decode required fields: %w", err)
	}
	return &s, nil
}

func (s *CatalogService) Create(ctx context.Context, svc model.Service) (*model.Service, error) {
	svc.Name = strings.TrimSpace(svc.Name)
	if svc.Name == "" {
		return nil, validationf("service name is required")
	}
	if !svc.Category.Valid() {
		return nil, validationf("unknown service type %q", svc.Category)
	}
	if svc.Price.IsNegative() || !model.HasCents(svc.Price) {
		return nil, ErrInvalidAmount
	}
	if svc.RequiredFields == nil {
		svc.RequiredFields = []string{}
	}

	fields, err := json.Marshal(svc.RequiredFields)
	if err != nil {
		return nil, fmt.Errorf("encode required fields: %w", err)
	}

	svc.ID = uuid.NewString()
	svc.CreatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO services (id, name, description, price_cents, category, delivery_time, required_fields, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		svc.ID, svc.Name, svc.Description, model.ToCents(svc.Price), string(svc.Category), svc.DeliveryTime, string(fields), svc.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert service: %w", err)
	}
	return &svc, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*model.Service, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrServiceNotFound
	}
	svc, err := scanService(s.db.QueryRowContext(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("get service: %w", err)
	}
	return svc, nil
}

func (s *CatalogService) List(ctx context.Context) ([]model.Service, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+serviceColumns+` FROM services ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query services: %w", err)
	}
	defer rows.Close()

	var services []model.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, *svc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return services, nil
}
