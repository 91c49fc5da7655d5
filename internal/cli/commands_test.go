package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unlockmart/internal/database"
	"unlockmart/internal/database/dbtest"
	"unlockmart/internal/model"
	"unlockmart/internal/service"
)

func run(t *testing.T, dsn string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{"--driver", database.DriverSQLite, "--database", dsn}, args...))
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"migrate", "role", "active", "credit", "order-status"} {
		assert.Contains(t, names, want)
	}
}

func TestCommands(t *testing.T) {
	dsn := dbtest.DSN(filepath.Join(t.TempDir(), "cli.db"))

	out, err := run(t, dsn, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema up to date")

	conn, err := database.NewDB(database.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(context.Background(), conn) })

	ctx := context.Background()
	account, err := service.NewAuthService(conn).Register(ctx, "Maria Lopez", "maria@example.com", "secret")
	require.NoError(t, err)

	out, err = run(t, dsn, "credit", account.ID, "40.00", "--reference", "cash-17")
	require.NoError(t, err)
	assert.Contains(t, out, "new balance 40.00")

	_, err = run(t, dsn, "credit", account.ID, "abc")
	assert.Error(t, err)

	out, err = run(t, dsn, "role", account.ID, "operator")
	require.NoError(t, err)
	assert.Regexp(t, `operator code MAR[A-Z0-9]+`, out)

	_, err = run(t, dsn, "role", account.ID, "superuser")
	assert.ErrorIs(t, err, service.ErrValidation)

	catalog := service.NewCatalogService(conn)
	svc, err := catalog.Create(ctx, model.Service{Name: "Bootloader", Price: decimal.RequireFromString("15"), Category: model.CategoryRemote})
	require.NoError(t, err)
	placement := service.NewPlacementService(conn, catalog, service.NewLedger(conn),
		service.NewOrderService(conn, service.NewOperatorRegistry(conn)), service.NewDispatcher(nil))
	p, err := placement.PlaceOrder(ctx, account.ID, svc.ID, nil, "")
	require.NoError(t, err)

	out, err = run(t, dsn, "order-status", p.OrderID, "completed")
	require.NoError(t, err)
	assert.Contains(t, out, p.OrderCode+" is now completed")

	_, err = run(t, dsn, "order-status", p.OrderID, "assigned")
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	out, err = run(t, dsn, "active", account.ID, "false")
	require.NoError(t, err)
	assert.Contains(t, out, "active=false")
}
