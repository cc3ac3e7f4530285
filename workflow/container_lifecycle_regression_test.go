package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/ossotrade/osso_backend/config"
	"github.com/ossotrade/osso_backend/models"
	"github.com/ossotrade/osso_backend/utils"
	"github.com/ossotrade/osso_backend/workflow"
	"github.com/shopspring/decimal"
)

// End-to-end container lifecycle against a real MySQL + redis:
// cost allocation, sale posting, returns, investor shares, the period write
// barrier and inventory confirmation.
func TestContainerLifecycleEndToEnd(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "osso_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	superCtx := actorContext(context.Background(), 1, "super", models.RoleSuperAdmin)
	adminCtx := actorContext(context.Background(), 2, "admin", models.RoleAdmin)
	sellerCtx := actorContext(context.Background(), 3, "seller", models.RoleSeller)

	product, err := models.CreateProduct(adminCtx, &models.NewProduct{Name: "Winter Jacket", Sku: "WJ-001"})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	client, err := models.CreateClient(adminCtx, &models.NewClient{Name: "Retail Client"})
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	investorA, err := models.CreateInvestor(adminCtx, &models.NewInvestor{Name: "Investor A"})
	if err != nil {
		t.Fatalf("CreateInvestor: %v", err)
	}
	investorB, err := models.CreateInvestor(adminCtx, &models.NewInvestor{Name: "Investor B"})
	if err != nil {
		t.Fatalf("CreateInvestor: %v", err)
	}

	// 7300 CNY at 7.3 CNY/USD -> $1000 over 100 units -> $10/unit.
	now := time.Now()
	container, err := workflow.CreateContainer(adminCtx, &models.NewContainer{
		Name:             "CNT-2026-01",
		PurchaseDate:     now,
		ExchangeRate:     decimal.NewFromFloat(7.3),
		TotalPurchaseCny: decimal.NewFromInt(7300),
		Items: []models.NewContainerItem{
			{ProductId: product.ID, Quantity: 100, SalePrice: decimal.NewFromInt(15)},
		},
	})
	if err != nil {
		t.Fatalf("CreateContainer: %v", err)
	}
	if !container.TotalPurchaseUsd.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected $1000 purchase, got %s", container.TotalPurchaseUsd)
	}
	if !container.Items[0].CostPerUnit.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected $10 unit cost, got %s", container.Items[0].CostPerUnit)
	}
	itemId := container.Items[0].ID

	// Investments 300/700 -> 30%/70%.
	if _, err := workflow.CreateInvestment(adminCtx, &models.NewContainerInvestment{
		ContainerId: container.ID, InvestorId: investorA.ID, InvestedAmount: decimal.NewFromInt(300),
	}); err != nil {
		t.Fatalf("CreateInvestment A: %v", err)
	}
	if _, err := workflow.CreateInvestment(adminCtx, &models.NewContainerInvestment{
		ContainerId: container.ID, InvestorId: investorB.ID, InvestedAmount: decimal.NewFromInt(700),
	}); err != nil {
		t.Fatalf("CreateInvestment B: %v", err)
	}

	// Seller posts a sale of 10 units at $15.
	sale, err := workflow.CreateSale(sellerCtx, &models.NewSale{
		ClientId: client.ID,
		Items:    []models.NewSaleItem{{ContainerItemId: itemId, Quantity: 10, SalePricePerUnit: decimal.NewFromInt(15)}},
	})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	if sale.InvoiceNumber == "" || sale.Status != models.SaleStatusDebt {
		t.Fatalf("unexpected sale header: %+v", sale)
	}

	container, err = models.GetContainer(adminCtx, container.ID)
	if err != nil {
		t.Fatalf("GetContainer: %v", err)
	}
	if container.Items[0].Quantity != 90 {
		t.Fatalf("stock should be 90 after sale, got %d", container.Items[0].Quantity)
	}
	if !container.NetProfit.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected $50 profit (150-100), got %s", container.NetProfit)
	}

	balances, err := models.GetInvestorBalances(adminCtx, container.ID)
	if err != nil {
		t.Fatalf("GetInvestorBalances: %v", err)
	}
	if len(balances) != 2 {
		t.Fatalf("expected 2 balances, got %d", len(balances))
	}
	owedByInvestor := map[int]decimal.Decimal{}
	for _, b := range balances {
		owedByInvestor[b.InvestorId] = b.ProfitOwed
	}
	if !owedByInvestor[investorA.ID].Equal(decimal.NewFromInt(15)) || !owedByInvestor[investorB.ID].Equal(decimal.NewFromInt(35)) {
		t.Fatalf("expected owed 15/35, got %s/%s", owedByInvestor[investorA.ID], owedByInvestor[investorB.ID])
	}

	// Pay investor A $10 of the $15 owed; the balance view drops to $5.
	if _, err := workflow.CreatePayout(adminCtx, &models.NewInvestorPayout{
		ContainerId: container.ID,
		InvestorId:  investorA.ID,
		Amount:      decimal.NewFromInt(10),
	}); err != nil {
		t.Fatalf("CreatePayout: %v", err)
	}
	balances, _ = models.GetInvestorBalances(adminCtx, container.ID)
	for _, b := range balances {
		if b.InvestorId == investorA.ID && !b.Remaining.Equal(decimal.NewFromInt(5)) {
			t.Fatalf("expected $5 remaining after payout, got %s", b.Remaining)
		}
	}

	// A container with recorded sales cannot be deleted.
	if err := workflow.DeleteContainer(superCtx, container.ID); err == nil {
		t.Fatal("expected container delete to be refused while sales exist")
	}

	// Oversell fails atomically: stock stays at 90.
	_, err = workflow.CreateSale(sellerCtx, &models.NewSale{
		ClientId: client.ID,
		Items:    []models.NewSaleItem{{ContainerItemId: itemId, Quantity: 1000, SalePricePerUnit: decimal.NewFromInt(15)}},
	})
	if !errors.Is(err, utils.ErrorInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	container, _ = models.GetContainer(adminCtx, container.ID)
	if container.Items[0].Quantity != 90 {
		t.Fatalf("failed sale must not touch stock, got %d", container.Items[0].Quantity)
	}

	// Return 4 of the 10: stock 94, profit 150->90 revenue, 60 cogs -> 30.
	saleItemId := sale.Items[0].ID
	if _, err := workflow.CreateReturn(sellerCtx, &models.NewReturn{
		SaleId: sale.ID,
		Items:  []models.NewReturnItem{{SaleItemId: saleItemId, Quantity: 4}},
	}); err != nil {
		t.Fatalf("CreateReturn: %v", err)
	}
	container, _ = models.GetContainer(adminCtx, container.ID)
	if container.Items[0].Quantity != 94 {
		t.Fatalf("stock should be 94 after return, got %d", container.Items[0].Quantity)
	}
	if !container.NetProfit.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected $30 profit after return, got %s", container.NetProfit)
	}

	// Only 6 units remain outstanding; returning 7 exceeds the ceiling.
	_, err = workflow.CreateReturn(sellerCtx, &models.NewReturn{
		SaleId: sale.ID,
		Items:  []models.NewReturnItem{{SaleItemId: saleItemId, Quantity: 7}},
	})
	if !errors.Is(err, utils.ErrorReturnExceedsRemaining) {
		t.Fatalf("expected return ceiling violation, got %v", err)
	}

	// Splitting the excess across duplicate lines for the same sale item must
	// not slip past the ceiling either: 4+4 = 8 against 6 outstanding.
	_, err = workflow.CreateReturn(sellerCtx, &models.NewReturn{
		SaleId: sale.ID,
		Items: []models.NewReturnItem{
			{SaleItemId: saleItemId, Quantity: 4},
			{SaleItemId: saleItemId, Quantity: 4},
		},
	})
	if !errors.Is(err, utils.ErrorReturnExceedsRemaining) {
		t.Fatalf("expected ceiling violation on duplicate-line return, got %v", err)
	}
	container, _ = models.GetContainer(adminCtx, container.ID)
	if container.Items[0].Quantity != 94 {
		t.Fatalf("rejected return must not touch stock, got %d", container.Items[0].Quantity)
	}

	// Lock the current period: sales are rejected until unlock.
	period, err := models.GetFinancialPeriod(adminCtx, sale.FinancialPeriodId)
	if err != nil {
		t.Fatalf("GetFinancialPeriod: %v", err)
	}
	if _, err := workflow.LockFinancialPeriod(adminCtx, period.ID, &models.PeriodLockInput{Reason: "month end"}); err != nil {
		t.Fatalf("LockFinancialPeriod: %v", err)
	}
	_, err = workflow.CreateSale(sellerCtx, &models.NewSale{
		ClientId: client.ID,
		Items:    []models.NewSaleItem{{ContainerItemId: itemId, Quantity: 1, SalePricePerUnit: decimal.NewFromInt(15)}},
	})
	if !errors.Is(err, utils.ErrorPeriodLocked) {
		t.Fatalf("expected locked period rejection, got %v", err)
	}
	// Deleting the sale is also barred: the gate runs against the sale's
	// original period.
	if err := workflow.DeleteSale(superCtx, sale.ID); !errors.Is(err, utils.ErrorPeriodLocked) {
		t.Fatalf("expected locked period rejection on delete, got %v", err)
	}
	// Seller cannot unlock; SUPER_ADMIN can.
	if _, err := workflow.UnlockFinancialPeriod(sellerCtx, period.ID, &models.PeriodLockInput{Reason: "oops"}); !errors.Is(err, utils.ErrorUnauthorized) {
		t.Fatalf("expected unauthorized unlock, got %v", err)
	}
	if _, err := workflow.UnlockFinancialPeriod(superCtx, period.ID, &models.PeriodLockInput{Reason: "corrections"}); err != nil {
		t.Fatalf("UnlockFinancialPeriod: %v", err)
	}

	// Sale delete restores the 6 outstanding units (4 already returned).
	if err := workflow.DeleteSale(sellerCtx, sale.ID); !errors.Is(err, utils.ErrorUnauthorized) {
		t.Fatalf("expected unauthorized sale delete, got %v", err)
	}
	if err := workflow.DeleteSale(superCtx, sale.ID); err != nil {
		t.Fatalf("DeleteSale: %v", err)
	}
	container, _ = models.GetContainer(adminCtx, container.ID)
	if container.Items[0].Quantity != 100 {
		t.Fatalf("stock should be back to 100 after sale delete, got %d", container.Items[0].Quantity)
	}
	if !container.NetProfit.IsZero() {
		t.Fatalf("profit should be zero with no sales, got %s", container.NetProfit)
	}

	// Clean inventory count: PENDING with a 3-digit code, then confirmed.
	session, err := workflow.CreateInventorySession(sellerCtx, &models.NewInventorySession{
		Items: []models.NewInventoryCount{{ProductId: product.ID, CountedQty: 100}},
	})
	if err != nil {
		t.Fatalf("CreateInventorySession: %v", err)
	}
	if session.Status != models.SessionStatusPending || len(session.Code) != 3 {
		t.Fatalf("expected pending session with code, got %+v", session)
	}
	// A clean but unconfirmed count does not mark inventory as checked.
	control, err := models.GetSystemControl(adminCtx)
	if err != nil {
		t.Fatalf("GetSystemControl: %v", err)
	}
	if control.InventoryCheckedAt != nil {
		t.Fatalf("inventory_checked_at must stay nil before confirmation, got %v", control.InventoryCheckedAt)
	}
	confirmed, err := workflow.ConfirmInventoryByCode(adminCtx, session.Code)
	if err != nil {
		t.Fatalf("ConfirmInventoryByCode: %v", err)
	}
	if confirmed.Status != models.SessionStatusConfirmed {
		t.Fatalf("expected confirmed session, got %s", confirmed.Status)
	}
	control, _ = models.GetSystemControl(adminCtx)
	if control.InventoryCheckedAt == nil {
		t.Fatal("confirmation should stamp inventory_checked_at")
	}
	// Re-submitting the code acknowledges without error.
	again, err := workflow.ConfirmInventoryByCode(adminCtx, session.Code)
	if err != nil || again.ID != session.ID {
		t.Fatalf("repeat confirmation should be idempotent: %v", err)
	}

	// A mismatched count lands in DISCREPANCY without a code.
	bad, err := workflow.CreateInventorySession(sellerCtx, &models.NewInventorySession{
		Items: []models.NewInventoryCount{{ProductId: product.ID, CountedQty: 97}},
	})
	if err != nil {
		t.Fatalf("CreateInventorySession (discrepancy): %v", err)
	}
	if bad.Status != models.SessionStatusDiscrepancy || bad.Code != "" {
		t.Fatalf("expected codeless discrepancy session, got %+v", bad)
	}
	control, _ = models.GetSystemControl(adminCtx)
	if control.WarehouseDiscrepancyCount != 1 {
		t.Fatalf("expected 1 open discrepancy, got %d", control.WarehouseDiscrepancyCount)
	}

	// Resolving clears the mismatch and re-arms with a fresh code; the
	// corrected counts land on the session items.
	resolved, err := workflow.ResolveInventoryDiscrepancy(adminCtx, bad.ID, &models.NewInventorySession{
		Items: []models.NewInventoryCount{{ProductId: product.ID, CountedQty: 100}},
	})
	if err != nil {
		t.Fatalf("ResolveInventoryDiscrepancy: %v", err)
	}
	if resolved.Status != models.SessionStatusPending || len(resolved.Code) != 3 {
		t.Fatalf("expected re-armed session, got %+v", resolved)
	}
	if resolved.DiscrepancyCount != 0 {
		t.Fatalf("resolve must clear the discrepancy count, got %d", resolved.DiscrepancyCount)
	}
	if _, err := workflow.ConfirmInventoryByCode(adminCtx, resolved.Code); err != nil {
		t.Fatalf("ConfirmInventoryByCode (resolved): %v", err)
	}
	control, _ = models.GetSystemControl(adminCtx)
	if control.WarehouseDiscrepancyCount != 0 {
		t.Fatalf("expected discrepancies cleared, got %d", control.WarehouseDiscrepancyCount)
	}
}

func actorContext(ctx context.Context, userId int, username string, role models.Role) context.Context {
	ctx = utils.SetUserIdInContext(ctx, userId)
	ctx = utils.SetUsernameInContext(ctx, username)
	return utils.SetUserRoleInContext(ctx, string(role))
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("osso-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := dockerRun("exec", name, "redis-cli", "ping"); err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("osso-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=osso_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent"); err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, containerPort string) (string, error) {
	out, err := dockerRun("port", container, containerPort)
	if err != nil {
		return "", fmt.Errorf("docker port: %w (%s)", err, out)
	}
	re := regexp.MustCompile(`:(\d+)\s*$`)
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if m := re.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("no host port in output: %q", out)
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
