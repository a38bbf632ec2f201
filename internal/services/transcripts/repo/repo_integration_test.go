//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"speakertag/internal/platform/store"
	"speakertag/internal/services/transcripts/domain"

	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func openTestStore(t *testing.T) store.TxRunner {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	t.Cleanup(cancel)

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "speakertag",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections"),
			).WithDeadline(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/speakertag?sslmode=disable", host, port.Port())

	st, err := store.Open(ctx, store.Config{PG: store.PGConfig{Enabled: true, URL: dsn, MaxConns: 4}},
		store.WithLogger(zerolog.New(io.Discard)))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	if err := EnsureSchema(ctx, st.PG); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return st.PG
}

func TestRepo_Integration(t *testing.T) {
	db := openTestStore(t)
	ctx := context.Background()
	r := NewPG().Bind(db)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	tr, err := r.InsertTranscript(ctx, "2024-03-01.txt", &day, 4)
	if err != nil {
		t.Fatalf("InsertTranscript: %v", err)
	}
	if tr.Date == nil || *tr.Date != "2024-03-01" {
		t.Fatalf("date = %v", tr.Date)
	}
	if err := r.InsertLines(ctx, tr.ID, []string{"За. Бат сайд", "100% дэмжинэ", "хариулт", "дахин"}); err != nil {
		t.Fatalf("InsertLines: %v", err)
	}

	id, ok, err := r.IDByFilename(ctx, "2024-03-01.txt")
	if err != nil || !ok || id != tr.ID {
		t.Fatalf("IDByFilename = %d %v %v", id, ok, err)
	}

	n, err := r.CountLines(ctx, tr.ID, "%")
	if err != nil || n != 1 {
		t.Fatalf("literal percent search = %d, %v", n, err)
	}
	page, err := r.PageLines(ctx, tr.ID, "", 2, 2)
	if err != nil || len(page) != 2 || page[0].LineNumber != 3 {
		t.Fatalf("PageLines = %+v, %v", page, err)
	}

	sp, by, at := "Гар", "web_user", time.Now().UTC()
	if _, err := r.SetSpeaker(ctx, []int64{page[0].ID}, &sp, &by, &at); err != nil {
		t.Fatalf("SetSpeaker: %v", err)
	}
	filled, err := r.FillSpeakers(ctx, tr.ID, []domain.LineTag{
		{LineNumber: 1, Speaker: "Бат сайд"},
		{LineNumber: 2, Speaker: "Бат сайд"},
		{LineNumber: 3, Speaker: "Бат сайд"},
	}, "speakertag", at)
	if err != nil {
		t.Fatalf("FillSpeakers: %v", err)
	}
	if filled != 2 {
		t.Fatalf("filled = %d, want 2", filled)
	}

	counts, err := r.Speakers(ctx, tr.ID)
	if err != nil {
		t.Fatalf("Speakers: %v", err)
	}
	if len(counts) != 2 || counts[0].Name != "Бат сайд" || counts[0].Count != 2 {
		t.Fatalf("speakers = %+v", counts)
	}

	got, err := r.Get(ctx, tr.ID)
	if err != nil || got.TaggedLines != 3 {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	if err := r.UpsertSpeaker(ctx, "Гар"); err != nil {
		t.Fatalf("UpsertSpeaker: %v", err)
	}
	if err := r.UpsertSpeaker(ctx, "Гар"); err != nil {
		t.Fatalf("UpsertSpeaker twice: %v", err)
	}
}
