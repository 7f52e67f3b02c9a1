package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"github.com/Xunop/library-tracker/internal/model"
	"github.com/Xunop/library-tracker/internal/store/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	d, err := db.NewDB(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	ctx := context.Background()
	if err := d.Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	if err := d.Seed(ctx); err != nil {
		t.Fatalf("Failed to seed: %v", err)
	}
	return NewStore(d.DB)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx *Store) error {
		if _, err := tx.CreateReference(ctx, model.KindGenre, "Roman"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected the callback error, got %v", err)
	}

	count, err := s.CountReferences(ctx, model.KindGenre)
	if err != nil {
		t.Fatalf("Failed to count genres: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected the insert to be rolled back, found %d genres", count)
	}
}

func TestSavepointKeepsEarlierWrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.WithTx(ctx, func(tx *Store) error {
		if err := tx.Savepoint(ctx, "row_1", func() error {
			_, err := tx.CreateReference(ctx, model.KindGenre, "Roman")
			return err
		}); err != nil {
			return err
		}
		failed := tx.Savepoint(ctx, "row_2", func() error {
			if _, err := tx.CreateReference(ctx, model.KindGenre, "Essai"); err != nil {
				return err
			}
			return errors.New("row failed")
		})
		if failed == nil {
			t.Errorf("Expected the second savepoint to fail")
		}
		// The first genre is visible inside the transaction.
		ref, err := tx.FindReferenceByName(ctx, model.KindGenre, "Roman")
		if err != nil {
			return err
		}
		if ref == nil {
			t.Errorf("Expected Roman to be visible after a failed savepoint")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Transaction failed: %v", err)
	}

	list, err := s.ListReferences(ctx, model.KindGenre)
	if err != nil {
		t.Fatalf("Failed to list genres: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Roman" {
		t.Errorf("Expected only Roman to be committed, got %+v", list)
	}
}

func TestSavepointOutsideTransaction(t *testing.T) {
	s := newTestStore(t)
	if err := s.Savepoint(context.Background(), "row_1", func() error { return nil }); err == nil {
		t.Errorf("Expected an error outside of a transaction")
	}
}

func TestSystemSessionSecret(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := s.GetOrCreateSessionSecret(ctx)
	if err != nil {
		t.Fatalf("Failed to create session secret: %v", err)
	}
	if len(first) != sessionSecretLength {
		t.Fatalf("Unexpected secret length %d", len(first))
	}
	second, err := s.GetOrCreateSessionSecret(ctx)
	if err != nil {
		t.Fatalf("Failed to read session secret: %v", err)
	}
	if first != second {
		t.Errorf("Session secret changed between calls")
	}
}
