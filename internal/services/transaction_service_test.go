package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fundledger/internal/exchangerate"
	"fundledger/internal/ledger"
	"fundledger/internal/models"
	"fundledger/internal/pagination"
	"fundledger/internal/testutil"
)

// fakeRates is a RateProvider returning a fixed rate or error.
type fakeRates struct {
	rate *ledger.Rate
	err  error
}

func (f *fakeRates) Current(ctx context.Context) (*ledger.Rate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rate, nil
}

func (f *fakeRates) Refresh(ctx context.Context) (*ledger.Rate, error) {
	return f.Current(ctx)
}

func (f *fakeRates) Peek() *ledger.Rate { return f.rate }

func rateOf(value string) *fakeRates {
	return &fakeRates{rate: &ledger.Rate{Value: decimal.RequireFromString(value), FetchedAt: time.Now()}}
}

func unavailableRates() *fakeRates {
	return &fakeRates{err: exchangerate.ErrUnavailable}
}

func adminActor(t *testing.T, user *models.User) Actor {
	t.Helper()
	return Actor{UserID: user.ID, Role: user.Role, IPAddress: "127.0.0.1"}
}

func mustDecimal(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSnapshot(t *testing.T) {
	t.Run("empty_ledger", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, nil, NewAuditService(db))

		entries, err := svc.Snapshot(context.Background())
		testutil.AssertNoError(t, err)
		if len(entries) != 0 {
			t.Errorf("expected no entries, got %d", len(entries))
		}
	})

	t.Run("orders_newest_first_and_resolves_persons", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, nil, NewAuditService(db))

		ana := testutil.CreateTestPersonWithName(t, db, "Ana")
		day := func(d int) time.Time { return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC) }
		testutil.CreateTestTransaction(t, db, "income", "1000", testutil.WithDate(day(1)), testutil.WithDescription("Donación"))
		testutil.CreateTestTransaction(t, db, "expense", "200", testutil.WithDate(day(3)), testutil.WithCategory("food"), testutil.WithPerson(ana.ID))
		testutil.CreateTestTransaction(t, db, "expense", "50", testutil.WithDate(day(2)), testutil.WithCategory("comida"))

		entries, err := svc.Snapshot(context.Background())
		testutil.AssertNoError(t, err)
		if len(entries) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(entries))
		}
		if !entries[0].Date.Equal(day(3)) || !entries[2].Date.Equal(day(1)) {
			t.Errorf("entries not ordered by date desc: %v, %v, %v", entries[0].Date, entries[1].Date, entries[2].Date)
		}
		if entries[0].Person == nil || entries[0].Person.FullName != "Ana" {
			t.Errorf("expected person Ana on newest entry, got %+v", entries[0].Person)
		}
		if entries[1].Category != ledger.CategoryFood {
			t.Errorf("legacy tag should decode to food, got %q", entries[1].Category)
		}
	})

	t.Run("invalid_record_fails_whole_snapshot", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, nil, NewAuditService(db))

		testutil.CreateTestTransaction(t, db, "income", "1000")
		testutil.CreateTestTransaction(t, db, "transfer", "10")

		_, err := svc.Snapshot(context.Background())
		testutil.AssertAppError(t, err, "INVALID_RECORD")
		if !errors.Is(err, ledger.ErrInvalidRecord) {
			t.Error("expected the decode error to be wrapped")
		}
	})

	t.Run("deleted_person_reference_dangles", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, nil, NewAuditService(db))

		person := testutil.CreateTestPerson(t, db)
		testutil.CreateTestTransaction(t, db, "expense", "10", testutil.WithPerson(person.ID))
		db.Delete(person)

		entries, err := svc.Snapshot(context.Background())
		testutil.AssertNoError(t, err)
		if entries[0].Person != nil {
			t.Errorf("expected unspecified person, got %+v", entries[0].Person)
		}
	})
}

func TestListTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db, nil, NewAuditService(db))

	testutil.CreateTestTransaction(t, db, "income", "1000", testutil.WithDescription("Donación iglesia"))
	testutil.CreateTestTransaction(t, db, "expense", "200", testutil.WithDescription("Compra farmacia"), testutil.WithCategory("medicines"))
	testutil.CreateTestTransaction(t, db, "expense", "300", testutil.WithDescription("Mercado"), testutil.WithCategory("food"))

	t.Run("type_filter", func(t *testing.T) {
		f, _ := ledger.ParseFilter("", "expense", "", "")
		page, err := svc.ListTransactions(context.Background(), f, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 2 {
			t.Errorf("expected 2 expenses, got %d", page.TotalItems)
		}
		if page.Page != 1 || page.PageSize != 20 {
			t.Errorf("expected default paging, got page %d size %d", page.Page, page.PageSize)
		}
	})

	t.Run("text_filter_is_case_insensitive", func(t *testing.T) {
		f, _ := ledger.ParseFilter("FARMACIA", "", "", "")
		page, err := svc.ListTransactions(context.Background(), f, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 || page.Data[0].Description != "Compra farmacia" {
			t.Errorf("unexpected result %+v", page.Data)
		}
	})

	t.Run("paging", func(t *testing.T) {
		page, err := svc.ListTransactions(context.Background(), ledger.Filter{}, pagination.PageRequest{Page: 2, PageSize: 2})
		testutil.AssertNoError(t, err)
		if len(page.Data) != 1 || page.TotalItems != 3 || page.TotalPages != 2 {
			t.Errorf("unexpected page %+v", page)
		}
	})
}

func TestRecentTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db, nil, NewAuditService(db))

	for i := 1; i <= 4; i++ {
		testutil.CreateTestTransaction(t, db, "income", "10", testutil.WithDate(time.Date(2024, 1, i, 0, 0, 0, 0, time.UTC)))
	}

	entries, err := svc.RecentTransactions(context.Background(), 2)
	testutil.AssertNoError(t, err)
	if len(entries) != 2 || entries[0].Date.Day() != 4 {
		t.Errorf("expected the two newest entries, got %+v", entries)
	}

	_, err = svc.RecentTransactions(context.Background(), 0)
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}

func TestGetTransactionByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db, nil, NewAuditService(db))

	person := testutil.CreateTestPersonWithName(t, db, "Luis")
	tx := testutil.CreateTestTransaction(t, db, "expense", "45.50", testutil.WithPerson(person.ID))

	entry, err := svc.GetTransactionByID(context.Background(), tx.ID)
	testutil.AssertNoError(t, err)
	if !entry.Amount.Equal(mustDecimal("45.5")) {
		t.Errorf("expected amount 45.5, got %s", entry.Amount)
	}
	if entry.Person == nil || entry.Person.FullName != "Luis" {
		t.Errorf("expected person Luis, got %+v", entry.Person)
	}

	_, err = svc.GetTransactionByID(context.Background(), "0190a6f2-0000-7000-8000-000000000000")
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
}

func TestCreateTransaction(t *testing.T) {
	t.Run("expense_with_category_and_rate_snapshot", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, rateOf("36.5"), NewAuditService(db))
		admin := testutil.CreateTestAdmin(t, db)

		entry, err := svc.CreateTransaction(context.Background(), adminActor(t, admin), CreateTransactionInput{
			Date:        time.Date(2024, 5, 2, 15, 30, 0, 0, time.UTC),
			Type:        "expense",
			Description: "  Medicinas para Ana  ",
			Amount:      mustDecimal("150.25"),
			Category:    "medicines",
		})
		testutil.AssertNoError(t, err)

		if entry.ID == "" {
			t.Fatal("expected an ID")
		}
		if entry.Description != "Medicinas para Ana" {
			t.Errorf("description not trimmed: %q", entry.Description)
		}
		if entry.Category != ledger.CategoryMedicines {
			t.Errorf("expected medicines, got %q", entry.Category)
		}
		if !entry.RateSnapshot.Valid || !entry.RateSnapshot.Decimal.Equal(mustDecimal("36.5")) {
			t.Errorf("expected rate snapshot 36.5, got %+v", entry.RateSnapshot)
		}
		if !entry.Date.Equal(time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("expected date truncated to the day, got %v", entry.Date)
		}

		var count int64
		db.Model(&models.AuditLog{}).Where("action = ? AND resource_id = ?", "CREATE_TRANSACTION", entry.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected one audit entry, got %d", count)
		}
	})

	t.Run("largest_amount_accepted", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, nil, NewAuditService(db))
		admin := testutil.CreateTestAdmin(t, db)

		entry, err := svc.CreateTransaction(context.Background(), adminActor(t, admin), CreateTransactionInput{
			Type:        "income",
			Description: "Herencia",
			Amount:      mustDecimal("999999999999.99"),
		})
		testutil.AssertNoError(t, err)
		if !entry.Amount.Equal(mustDecimal("999999999999.99")) {
			t.Errorf("amount = %s", entry.Amount)
		}
	})

	t.Run("rate_snapshot_rounded_to_stored_scale", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, rateOf("36.123456"), NewAuditService(db))
		admin := testutil.CreateTestAdmin(t, db)

		entry, err := svc.CreateTransaction(context.Background(), adminActor(t, admin), CreateTransactionInput{
			Type:        "expense",
			Description: "Comida",
			Amount:      mustDecimal("10"),
		})
		testutil.AssertNoError(t, err)
		if !entry.RateSnapshot.Valid || !entry.RateSnapshot.Decimal.Equal(mustDecimal("36.1235")) {
			t.Fatalf("expected rate snapshot 36.1235, got %+v", entry.RateSnapshot)
		}

		stored, err := svc.GetTransactionByID(context.Background(), entry.ID)
		testutil.AssertNoError(t, err)
		if !stored.RateSnapshot.Decimal.Equal(entry.RateSnapshot.Decimal) {
			t.Errorf("stored snapshot %s differs from returned %s", stored.RateSnapshot.Decimal, entry.RateSnapshot.Decimal)
		}
	})

	t.Run("income_drops_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, nil, NewAuditService(db))
		admin := testutil.CreateTestAdmin(t, db)

		entry, err := svc.CreateTransaction(context.Background(), adminActor(t, admin), CreateTransactionInput{
			Type:        "income",
			Description: "Donación",
			Amount:      mustDecimal("500"),
			Category:    "food",
		})
		testutil.AssertNoError(t, err)
		if entry.Category != ledger.CategoryNone {
			t.Errorf("expected no category on income, got %q", entry.Category)
		}
		if entry.RateSnapshot.Valid {
			t.Error("expected no rate snapshot without a rate provider")
		}
	})

	t.Run("inline_person_creation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, nil, NewAuditService(db))
		admin := testutil.CreateTestAdmin(t, db)

		entry, err := svc.CreateTransaction(context.Background(), adminActor(t, admin), CreateTransactionInput{
			Type:          "expense",
			Description:   "Transporte",
			Amount:        mustDecimal("20"),
			NewPersonName: "María",
		})
		testutil.AssertNoError(t, err)
		if entry.Person == nil || entry.Person.FullName != "María" {
			t.Fatalf("expected new person María, got %+v", entry.Person)
		}

		var person models.Person
		if err := db.Where("id = ?", entry.Person.ID).First(&person).Error; err != nil {
			t.Fatalf("person not stored: %v", err)
		}
	})

	t.Run("existing_person", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, nil, NewAuditService(db))
		admin := testutil.CreateTestAdmin(t, db)
		person := testutil.CreateTestPersonWithName(t, db, "José")

		entry, err := svc.CreateTransaction(context.Background(), adminActor(t, admin), CreateTransactionInput{
			Type:        "expense",
			Description: "Consulta",
			Amount:      mustDecimal("80"),
			PersonID:    person.ID,
		})
		testutil.AssertNoError(t, err)
		if entry.PersonID() != person.ID {
			t.Errorf("expected person %s, got %s", person.ID, entry.PersonID())
		}
	})

	t.Run("validation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, nil, NewAuditService(db))
		admin := testutil.CreateTestAdmin(t, db)
		actor := adminActor(t, admin)

		valid := CreateTransactionInput{Type: "expense", Description: "x", Amount: mustDecimal("1")}
		tests := []struct {
			name     string
			mutate   func(*CreateTransactionInput)
			wantCode string
		}{
			{"unknown_type", func(in *CreateTransactionInput) { in.Type = "transfer" }, "INVALID_TRANSACTION_TYPE"},
			{"empty_description", func(in *CreateTransactionInput) { in.Description = "   " }, "INVALID_INPUT"},
			{"zero_amount", func(in *CreateTransactionInput) { in.Amount = decimal.Zero }, "INVALID_INPUT"},
			{"negative_amount", func(in *CreateTransactionInput) { in.Amount = mustDecimal("-5") }, "INVALID_INPUT"},
			{"too_many_decimals", func(in *CreateTransactionInput) { in.Amount = mustDecimal("1.005") }, "INVALID_INPUT"},
			{"amount_exceeds_column", func(in *CreateTransactionInput) { in.Amount = mustDecimal("1000000000000") }, "INVALID_INPUT"},
			{"unknown_category", func(in *CreateTransactionInput) { in.Category = "rent" }, "INVALID_CATEGORY"},
			{"missing_person", func(in *CreateTransactionInput) { in.PersonID = "0190a6f2-0000-7000-8000-000000000000" }, "PERSON_NOT_FOUND"},
			{"both_person_fields", func(in *CreateTransactionInput) {
				in.PersonID = "0190a6f2-0000-7000-8000-000000000000"
				in.NewPersonName = "Ana"
			}, "INVALID_INPUT"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				in := valid
				tt.mutate(&in)
				_, err := svc.CreateTransaction(context.Background(), actor, in)
				testutil.AssertAppError(t, err, tt.wantCode)
			})
		}

		var count int64
		db.Model(&models.Transaction{}).Count(&count)
		if count != 0 {
			t.Errorf("rejected input must not be stored, found %d rows", count)
		}
	})

	t.Run("viewer_is_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, nil, NewAuditService(db))
		viewer := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(context.Background(), adminActor(t, viewer), CreateTransactionInput{
			Type: "income", Description: "x", Amount: mustDecimal("1"),
		})
		testutil.AssertAppError(t, err, "FORBIDDEN")

		_, err = svc.CreateTransaction(context.Background(), Actor{Role: models.RoleAdmin}, CreateTransactionInput{
			Type: "income", Description: "x", Amount: mustDecimal("1"),
		})
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})
}

func TestDeleteTransaction(t *testing.T) {
	t.Run("delete_then_reaggregate", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, nil, NewAuditService(db))
		admin := testutil.CreateTestAdmin(t, db)

		testutil.CreateTestTransaction(t, db, "income", "1000")
		testutil.CreateTestTransaction(t, db, "expense", "200", testutil.WithCategory("food"))
		doomed := testutil.CreateTestTransaction(t, db, "expense", "300", testutil.WithCategory("transport"))

		testutil.AssertNoError(t, svc.DeleteTransaction(context.Background(), adminActor(t, admin), doomed.ID))

		entries, err := svc.Snapshot(context.Background())
		testutil.AssertNoError(t, err)
		summary := ledger.Summarize(entries)
		if !summary.CurrentBalance.Equal(mustDecimal("800")) {
			t.Errorf("expected balance 800 after delete, got %s", summary.CurrentBalance)
		}
		totals := ledger.TotalsByCategory(entries)
		if !totals[ledger.CategoryTransport].IsZero() {
			t.Errorf("deleted expense still counted: %s", totals[ledger.CategoryTransport])
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, nil, NewAuditService(db))
		admin := testutil.CreateTestAdmin(t, db)

		err := svc.DeleteTransaction(context.Background(), adminActor(t, admin), "0190a6f2-0000-7000-8000-000000000000")
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("viewer_is_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, nil, NewAuditService(db))
		viewer := testutil.CreateTestUser(t, db)
		tx := testutil.CreateTestTransaction(t, db, "income", "10")

		err := svc.DeleteTransaction(context.Background(), adminActor(t, viewer), tx.ID)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})
}
