package codebookstore

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/hrsdata/codebook-backend/internal/domain"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)
	return New(mock), mock
}

func sampleCodebook() *domain.Codebook {
	wave := 15
	cb := &domain.Codebook{
		Source:      domain.SourceCore,
		Year:        2020,
		ReleaseType: "Final Release",
		Wave:        &wave,
		Sections: []domain.Section{
			{Code: "A", Name: "Demographics", Level: domain.LevelRespondent, Year: 2020, Variables: []string{"RA100"}},
		},
		Variables: []domain.Variable{
			{Name: "RA100", Section: "A", Level: domain.LevelRespondent, Type: domain.TypeNumeric, Description: "AGE"},
		},
		ParsedAt: time.Now().UTC(),
	}
	cb.Finalize()
	return cb
}

func TestStoreUpsert(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO codebooks`).
		WithArgs(pgxmock.AnyArg(), "hrs_core_codebook", 2020, pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := store.Upsert(context.Background(), sampleCodebook()); err != nil {
		t.Fatalf("Upsert: unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStoreGet(t *testing.T) {
	store, mock := newMockStore(t)

	doc, err := json.Marshal(sampleCodebook())
	if err != nil {
		t.Fatal(err)
	}
	mock.ExpectQuery(`SELECT document FROM codebooks`).
		WithArgs("hrs_core_codebook", 2020).
		WillReturnRows(pgxmock.NewRows([]string{"document"}).AddRow(doc))

	got, err := store.Get(context.Background(), domain.SourceCore, 2020)
	if err != nil {
		t.Fatalf("Get: unexpected error: %v", err)
	}
	if got.Year != 2020 || got.Source != domain.SourceCore {
		t.Errorf("Get returned %s/%d", got.Source, got.Year)
	}
	if got.TotalVariables != 1 || got.Variables[0].Name != "RA100" {
		t.Errorf("Get lost document content: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStoreGetNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT document FROM codebooks`).
		WithArgs("hrs_exit_codebook", 1996).
		WillReturnError(pgx.ErrNoRows)

	_, err := store.Get(context.Background(), domain.SourceExit, 1996)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get missing codebook = %v, want ErrNotFound", err)
	}
}

func TestStoreListYears(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT year FROM codebooks`).
		WithArgs("hrs_core_codebook").
		WillReturnRows(pgxmock.NewRows([]string{"year"}).AddRow(2018).AddRow(2020))

	years, err := store.ListYears(context.Background(), domain.SourceCore)
	if err != nil {
		t.Fatalf("ListYears: unexpected error: %v", err)
	}
	if len(years) != 2 || years[0] != 2018 || years[1] != 2020 {
		t.Errorf("ListYears = %v, want [2018 2020]", years)
	}
}

func TestStoreList(t *testing.T) {
	store, mock := newMockStore(t)

	doc, err := json.Marshal(sampleCodebook())
	if err != nil {
		t.Fatal(err)
	}
	mock.ExpectQuery(`SELECT document FROM codebooks`).
		WithArgs("hrs_core_codebook", 2020).
		WillReturnRows(pgxmock.NewRows([]string{"document"}).AddRow(doc))

	source := domain.SourceCore
	out, err := store.List(context.Background(), &source, []int{2020})
	if err != nil {
		t.Fatalf("List: unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].Year != 2020 || out[0].Variables[0].Name != "RA100" {
		t.Errorf("List = %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStoreListUnfiltered(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT document FROM codebooks`).
		WillReturnRows(pgxmock.NewRows([]string{"document"}))

	out, err := store.List(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("List: unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("List = %+v, want empty", out)
	}
}

func TestStoreReplaceIndex(t *testing.T) {
	store, mock := newMockStore(t)
	cb := sampleCodebook()

	mock.ExpectExec(`DELETE FROM variables_index`).
		WithArgs("hrs_core_codebook", 2020).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	batch := mock.ExpectBatch()
	batch.ExpectExec(`INSERT INTO variables_index`).
		WithArgs(pgxmock.AnyArg(), "hrs_core_codebook", 2020, "RA100", "A",
			"Respondent", "Numeric", "AGE").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := store.ReplaceIndex(context.Background(), cb); err != nil {
		t.Fatalf("ReplaceIndex: unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStoreReplaceSections(t *testing.T) {
	store, mock := newMockStore(t)
	cb := sampleCodebook()

	mock.ExpectExec(`DELETE FROM codebook_sections`).
		WithArgs("hrs_core_codebook", 2020).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	batch := mock.ExpectBatch()
	batch.ExpectExec(`INSERT INTO codebook_sections`).
		WithArgs(pgxmock.AnyArg(), "hrs_core_codebook", 2020, "A", "Respondent",
			"Demographics", 1, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := store.ReplaceSections(context.Background(), cb); err != nil {
		t.Fatalf("ReplaceSections: unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStoreSearchIndex(t *testing.T) {
	store, mock := newMockStore(t)

	rows := pgxmock.NewRows([]string{"source", "year", "name", "section", "level", "type", "description"}).
		AddRow("hrs_core_codebook", 2020, "RSUBHH", "PR", "Household", "Character", "SUBHOUSEHOLD ID").
		AddRow("hrs_core_codebook", 2020, "RA100", "A", "Respondent", "Numeric", "AGE")
	mock.ExpectQuery(`SELECT source, year, name, section, level, type, description FROM variables_index`).
		WillReturnRows(rows)

	source := domain.SourceCore
	year := 2020
	out, err := store.SearchIndex(context.Background(), IndexFilter{Source: &source, Year: &year})
	if err != nil {
		t.Fatalf("SearchIndex: unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("SearchIndex returned %d rows, want 2", len(out))
	}
	if out[0].Name != "RSUBHH" || out[1].Level != "Respondent" {
		t.Errorf("SearchIndex rows = %+v", out)
	}
}

func TestIndexFilterQuery(t *testing.T) {
	source := domain.SourceCore
	level := domain.LevelHousehold
	search := "SUBHH"
	f := IndexFilter{Source: &source, Level: &level, Search: &search}
	f.normalize()

	sql, args, err := f.buildQuery().ToSql()
	if err != nil {
		t.Fatalf("buildQuery: %v", err)
	}

	for _, want := range []string{"source = $1", "level = $2", "ILIKE", "ORDER BY year, name", "LIMIT 100"} {
		if !strings.Contains(sql, want) {
			t.Errorf("query %q missing %q", sql, want)
		}
	}
	if len(args) != 4 {
		t.Errorf("args = %v, want 4 (source, level, 2x pattern)", args)
	}
	if args[2] != "%SUBHH%" {
		t.Errorf("search pattern = %v, want %%SUBHH%%", args[2])
	}
}

func TestIndexFilterClampsLimit(t *testing.T) {
	f := IndexFilter{Limit: 100000, Offset: -5}
	f.normalize()
	if f.Limit != maxLimit {
		t.Errorf("limit = %d, want clamped to %d", f.Limit, maxLimit)
	}
	if f.Offset != 0 {
		t.Errorf("offset = %d, want 0", f.Offset)
	}
}
