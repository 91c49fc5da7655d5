package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"unlockmart/internal/model"
)

type OrderService struct {
	db       *sql.DB
	registry *OperatorRegistry
	newCode  func(time.Time) (string, error)
	now      func() time.Time
}

func NewOrderService(db *sql.DB, registry *OperatorRegistry) *OrderService {
	return &OrderService{
		db:       db,
		registry: registry,
		newCode:  newOrderCode,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// newOrderCode yields ORD-<unix millis>-<6 uppercase hex>. There is no
// retry on collision; the UNIQUE constraint turns one into an insert error.
func newOrderCode(at time.Time) (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return "ORD-" + strconv.FormatInt(at.UnixMilli(), 10) + "-" + strings.ToUpper(hex.EncodeToString(b)), nil
}

// Create writes a new order through q, which is normally the placement
// transaction. The price snapshot comes from svc as passed in.
func (s *OrderService) Create(ctx context.Context, q Querier, account *model.Account, svc *model.Service, fields map[string]string, operatorCode string) (*model.Order, error) {
	if svc == nil {
		return nil, ErrServiceNotFound
	}
	if q == nil {
		q = s.db
	}

	order := model.Order{
		ID:          uuid.NewString(),
		AccountID:   account.ID,
		ServiceID:   svc.ID,
		ServiceName: svc.Name,
		Price:       svc.Price,
		Fields:      fields,
		Status:      model.StatusInProgress,
		Documents:   []string{},
	}
	if order.Fields == nil {
		order.Fields = map[string]string{}
	}

	if operatorCode != "" {
		if svc.Category != model.EligibilityCategory {
			return nil, ErrOperatorCodeNotApplicable
		}
		operator, err := s.registry.LookupByCode(ctx, q, operatorCode)
		if err != nil {
			return nil, err
		}
		order.OperatorCode = operatorCode
		order.OperatorID = operator.ID
		order.Status = model.StatusAssigned
	}

	order.CreatedAt = s.now()
	order.UpdatedAt = order.CreatedAt
	code, err := s.newCode(order.CreatedAt)
	if err != nil {
		return nil, err
	}
	order.OrderCode = code

	fieldsJSON, err := json.Marshal(order.Fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}

	_, err = q.ExecContext(ctx,
		`INSERT INTO orders (id, order_code, account_id, service_id, service_name, price_cents, fields, status, operator_code, operator_id, documents, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		order.ID, order.OrderCode, order.AccountID, order.ServiceID, order.ServiceName, model.ToCents(order.Price),
		string(fieldsJSON), string(order.Status), nullString(order.OperatorCode), nullString(order.OperatorID), "[]",
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	return &order, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

const orderColumns = `o.id, o.order_code, o.account_id, o.service_id, o.service_name, o.price_cents, o.fields, o.status,
	o.operator_code, o.operator_id, o.documents, o.created_at, o.updated_at`

func scanOrder(row rowScanner, extra ...any) (*model.Order, error) {
	var (
		o            model.Order
		cents        int64
		fields, docs string
		opCode, opID sql.NullString
	)
	dest := []any{&o.ID, &o.OrderCode, &o.AccountID, &o.ServiceID, &o.ServiceName, &cents, &fields, &o.Status,
		&opCode, &opID, &docs, &o.CreatedAt, &o.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	o.Price = model.FromCents(cents)
	o.OperatorCode = opCode.String
	o.OperatorID = opID.String
	if err := json.Unmarshal([]byte(fields), &o.Fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	if err := json.Unmarshal([]byte(docs), &o.Documents); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	return &o, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*model.Order, error) {
	return s.get(ctx, s.db, id)
}

func (s *OrderService) get(ctx context.Context, q Querier, id string) (*model.Order, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrOrderNotFound
	}
	o, err := scanOrder(q.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (s *OrderService) ListByAccount(ctx context.Context, accountID string) ([]model.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		WHERE o.account_id = $1
		ORDER BY o.created_at DESC, o.order_code DESC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return orders, nil
}

// History is ListByAccount with the current catalog entry attached to each
// order. The snapshot fields are left as they were at order time.
func (s *OrderService) History(ctx context.Context, accountID string) ([]model.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+`, `+prefixed("s", serviceColumns)+`
		FROM orders o
		JOIN services s ON s.id = o.service_id
		WHERE o.account_id = $1
		ORDER BY o.created_at DESC, o.order_code DESC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var (
			svc    model.Service
			cents  int64
			fields string
		)
		o, err := scanOrder(rows, &svc.ID, &svc.Name, &svc.Description, &cents, &svc.Category, &svc.DeliveryTime, &fields, &svc.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		svc.Price = model.FromCents(cents)
		if err := json.Unmarshal([]byte(fields), &svc.RequiredFields); err != nil {
			return nil, fmt.Errorf("decode required fields: %w", err)
		}
		o.Service = &svc
		orders = append(orders, *o)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return orders, nil
}

func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

const maxUpdateAttempts = 5

// Transition applies an administrative status change. The update is
// conditioned on the status it was validated against.
func (s *OrderService) Transition(ctx context.Context, orderID string, to model.OrderStatus) (*model.Order, error) {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		order, err := s.get(ctx, s.db, orderID)
		if err != nil {
			return nil, err
		}
		if !model.CanTransition(order.Status, to) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, to)
		}

		from := order.Status
		order.Status = to
		order.UpdatedAt = s.now()
		res, err := s.db.ExecContext(ctx,
			`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
			string(to), order.UpdatedAt, orderID, string(from),
		)
		if err != nil {
			return nil, fmt.Errorf("update order: %w", err)
		}
		if ok, err := affected(res); err != nil {
			return nil, err
		} else if !ok {
			continue
		}

		slog.InfoContext(ctx, "order status changed", "order_code", order.OrderCode, "from", from, "to", to)
		return order, nil
	}
	return nil, fmt.Errorf("update order %s: concurrent modification", orderID)
}

// AttachDocument appends a stored document path to an order owned by accountID.
func (s *OrderService) AttachDocument(ctx context.Context, accountID, orderID, path string) (*model.Order, error) {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		order, err := s.get(ctx, s.db, orderID)
		if err != nil {
			return nil, err
		}
		if order.AccountID != accountID {
			return nil, ErrNotOrderOwner
		}

		prev, err := json.Marshal(order.Documents)
		if err != nil {
			return nil, fmt.Errorf("encode documents: %w", err)
		}
		order.Documents = append(order.Documents, path)
		next, err := json.Marshal(order.Documents)
		if err != nil {
			return nil, fmt.Errorf("encode documents: %w", err)
		}
		order.UpdatedAt = s.now()

		res, err := s.db.ExecContext(ctx,
			`UPDATE orders SET documents = $1, updated_at = $2 WHERE id = $3 AND documents = $4`,
			string(next), order.UpdatedAt, orderID, string(prev),
		)
		if err != nil {
			return nil, fmt.Errorf("update order: %w", err)
		}
		if ok, err := affected(res); err != nil {
			return nil, err
		} else if ok {
			return order, nil
		}
	}
	return nil, fmt.Errorf("update order %s: concurrent modification", orderID)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
