package service

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"speakertag/internal/modkit/repokit"
	perr "speakertag/internal/platform/errors"
	"speakertag/internal/platform/testkit"
	"speakertag/internal/services/transcripts/domain"
	"speakertag/internal/services/transcripts/repo"
)

// memStore is an in-memory repo.Storage. Tx snapshots and restores it on error
type memStore struct {
	transcripts []domain.Transcript
	lines       []domain.Line
	speakers    map[string]bool
	nextLine    int64
}

func newMem() *memStore { return &memStore{speakers: map[string]bool{}} }

func (m *memStore) clone() *memStore {
	c := &memStore{
		transcripts: slices.Clone(m.transcripts),
		lines:       slices.Clone(m.lines),
		speakers:    map[string]bool{},
		nextLine:    m.nextLine,
	}
	for k, v := range m.speakers {
		c.speakers[k] = v
	}
	return c
}

func (m *memStore) List(context.Context) ([]domain.Transcript, error) { return m.transcripts, nil }

func (m *memStore) Get(_ context.Context, id int64) (domain.Transcript, error) {
	for _, t := range m.transcripts {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Transcript{}, perr.ErrNotFound
}

func (m *memStore) IDByFilename(_ context.Context, name string) (int64, bool, error) {
	for _, t := range m.transcripts {
		if t.Filename == name {
			return t.ID, true, nil
		}
	}
	return 0, false, nil
}

func (m *memStore) of(id int64, search string) []domain.Line {
	var out []domain.Line
	for _, l := range m.lines {
		if l.TranscriptID == id && strings.Contains(strings.ToLower(l.Text), strings.ToLower(search)) {
			out = append(out, l)
		}
	}
	return out
}

func (m *memStore) Texts(_ context.Context, id int64) ([]string, error) {
	var out []string
	for _, l := range m.of(id, "") {
		out = append(out, l.Text)
	}
	return out, nil
}

func (m *memStore) AllLines(_ context.Context, id int64) ([]domain.Line, error) {
	return m.of(id, ""), nil
}

func (m *memStore) CountLines(_ context.Context, id int64, search string) (int, error) {
	return len(m.of(id, search)), nil
}

func (m *memStore) PageLines(_ context.Context, id int64, search string, limit, offset int) ([]domain.Line, error) {
	ls := m.of(id, search)
	if offset >= len(ls) {
		return nil, nil
	}
	return ls[offset:min(len(ls), offset+limit)], nil
}

func (m *memStore) Line(_ context.Context, id int64) (domain.Line, error) {
	for _, l := range m.lines {
		if l.ID == id {
			return l, nil
		}
	}
	return domain.Line{}, perr.ErrNotFound
}

func (m *memStore) LinesByIDs(_ context.Context, tid int64, ids []int64) ([]domain.Line, error) {
	var out []domain.Line
	for _, l := range m.lines {
		if l.TranscriptID == tid && slices.Contains(ids, l.ID) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memStore) count(tid int64) []domain.SpeakerCount {
	counts := map[string]int{}
	for _, l := range m.lines {
		if (tid == 0 || l.TranscriptID == tid) && l.Speaker != nil {
			counts[*l.Speaker]++
		}
	}
	out := []domain.SpeakerCount{}
	for k, v := range counts {
		out = append(out, domain.SpeakerCount{Name: k, Count: v})
	}
	slices.SortFunc(out, func(a, b domain.SpeakerCount) int { return b.Count - a.Count })
	return out
}

func (m *memStore) Speakers(_ context.Context, id int64) ([]domain.SpeakerCount, error) {
	return m.count(id), nil
}

func (m *memStore) AllSpeakers(context.Context) ([]domain.SpeakerCount, error) { return m.count(0), nil }

func (m *memStore) CountTagged(_ context.Context, id int64) (int, error) {
	n := 0
	for _, l := range m.of(id, "") {
		if l.Speaker != nil {
			n++
		}
	}
	return n, nil
}

func (m *memStore) InsertTranscript(_ context.Context, name string, _ *time.Time, total int) (domain.Transcript, error) {
	t := domain.Transcript{ID: int64(len(m.transcripts) + 1), Filename: name, TotalLines: total}
	m.transcripts = append(m.transcripts, t)
	return t, nil
}

func (m *memStore) InsertLines(_ context.Context, tid int64, lines []string) error {
	for i, s := range lines {
		m.nextLine++
		m.lines = append(m.lines, domain.Line{ID: m.nextLine, TranscriptID: tid, LineNumber: i + 1, Text: s})
	}
	return nil
}

func (m *memStore) SetSpeaker(_ context.Context, ids []int64, sp, by *string, at *time.Time) ([]domain.Line, error) {
	var out []domain.Line
	for i := range m.lines {
		if slices.Contains(ids, m.lines[i].ID) {
			m.lines[i].Speaker, m.lines[i].TaggedBy, m.lines[i].TaggedAt = sp, by, at
			out = append(out, m.lines[i])
		}
	}
	return out, nil
}

func (m *memStore) FillSpeakers(_ context.Context, tid int64, tags []domain.LineTag, by string, at time.Time) (int, error) {
	n := 0
	for _, t := range tags {
		for i := range m.lines {
			l := &m.lines[i]
			if l.TranscriptID == tid && l.LineNumber == t.LineNumber && l.Speaker == nil {
				sp, b := t.Speaker, by
				l.Speaker, l.TaggedBy, l.TaggedAt = &sp, &b, &at
				n++
			}
		}
	}
	return n, nil
}

func (m *memStore) UpsertSpeaker(_ context.Context, name string) error {
	m.speakers[name] = true
	return nil
}

// memDB satisfies repokit.TxRunner; queries never reach it
type memDB struct{ mem *memStore }

func (memDB) Exec(context.Context, string, ...any) (repokit.CommandTag, error) { return nil, nil }
func (memDB) Query(context.Context, string, ...any) (repokit.Rows, error)     { return nil, nil }
func (memDB) QueryRow(context.Context, string, ...any) repokit.Row            { return nil }

func (d memDB) Tx(_ context.Context, fn func(q repokit.Queryer) error) error {
	snap := d.mem.clone()
	if err := fn(d); err != nil {
		*d.mem = *snap
		return err
	}
	return nil
}

func newSvc(t *testing.T) (*Service, *memStore) {
	t.Helper()
	mem := newMem()
	binder := repokit.BindFunc[repo.Storage](func(repokit.Queryer) repo.Storage { return mem })
	s := New(memDB{mem: mem}, binder, Config{PageSize: 2, MaxPageSize: 3})
	s.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	return s, mem
}

func seed(t *testing.T, s *Service, lines ...string) domain.Transcript {
	t.Helper()
	tr, err := s.Import(context.Background(), domain.ImportInput{Filename: "2024-03-01.txt", Lines: lines})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	return tr
}

func TestNew_PanicsOnNil(t *testing.T) {
	testkit.MustPanic(t, func() { New(nil, repo.NewPG(), Config{}) })
	testkit.MustPanic(t, func() { New(memDB{}, nil, Config{}) })
}

func TestImport_NormalizesAndRejectsDuplicates(t *testing.T) {
	s, _ := newSvc(t)
	tr := seed(t, s, "  За.   Бат сайд ", "", "   ", "хариулт")
	if tr.TotalLines != 2 {
		t.Fatalf("total lines = %d, want 2", tr.TotalLines)
	}
	texts, err := s.Texts(context.Background(), tr.ID)
	if err != nil {
		t.Fatalf("Texts: %v", err)
	}
	if !slices.Equal(texts, []string{"За. Бат сайд", "хариулт"}) {
		t.Fatalf("texts = %q", texts)
	}

	_, err = s.Import(context.Background(), domain.ImportInput{Filename: "2024-03-01.txt", Lines: []string{"x"}})
	if !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("duplicate import err = %v, want conflict", err)
	}
	_, err = s.Import(context.Background(), domain.ImportInput{Filename: "  "})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("blank filename err = %v, want invalid argument", err)
	}
}

func TestLines_Paging(t *testing.T) {
	s, _ := newSvc(t)
	tr := seed(t, s, "нэг", "хоёр", "гурав", "дөрөв", "тав")
	ctx := context.Background()

	cases := []struct {
		name      string
		in        domain.ListLinesInput
		wantN     int
		wantPer   int
		wantPages int
		wantTotal int
	}{
		{"default page size", domain.ListLinesInput{}, 2, 2, 3, 5},
		{"capped page size", domain.ListLinesInput{PerPage: 50}, 3, 3, 2, 5},
		{"last page", domain.ListLinesInput{Page: 3}, 1, 2, 3, 5},
		{"past the end", domain.ListLinesInput{Page: 9}, 0, 2, 3, 5},
		{"search", domain.ListLinesInput{Search: "ГУР"}, 1, 2, 1, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			c.in.TranscriptID = tr.ID
			p, err := s.Lines(ctx, c.in)
			if err != nil {
				t.Fatalf("Lines: %v", err)
			}
			if len(p.Lines) != c.wantN || p.Pagination.PerPage != c.wantPer ||
				p.Pagination.Pages != c.wantPages || p.Pagination.Total != c.wantTotal {
				t.Fatalf("got %d lines, pagination %+v", len(p.Lines), p.Pagination)
			}
		})
	}

	if _, err := s.Lines(ctx, domain.ListLinesInput{TranscriptID: 99}); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("unknown transcript err = %v, want not found", err)
	}
}

func TestTagLine(t *testing.T) {
	s, mem := newSvc(t)
	tr := seed(t, s, "нэг", "хоёр")
	ctx := context.Background()

	l, err := s.TagLine(ctx, domain.TagInput{TranscriptID: tr.ID, LineID: 1, Speaker: " Бат сайд "})
	if err != nil {
		t.Fatalf("TagLine: %v", err)
	}
	if l.Speaker == nil || *l.Speaker != "Бат сайд" {
		t.Fatalf("speaker = %v", l.Speaker)
	}
	if l.TaggedBy == nil || *l.TaggedBy != domain.DefaultTaggedBy {
		t.Fatalf("tagged_by = %v", l.TaggedBy)
	}
	if !mem.speakers["Бат сайд"] {
		t.Fatalf("speaker not registered")
	}

	l, err = s.TagLine(ctx, domain.TagInput{TranscriptID: tr.ID, LineID: 1, Speaker: ""})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if l.Speaker != nil || l.TaggedAt != nil || l.TaggedBy != nil {
		t.Fatalf("expected cleared tag, got %+v", l)
	}

	if _, err := s.TagLine(ctx, domain.TagInput{TranscriptID: tr.ID, LineID: 42, Speaker: "x"}); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("missing line err = %v", err)
	}
	if _, err := s.TagLine(ctx, domain.TagInput{TranscriptID: 7, LineID: 1, Speaker: "x"}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("foreign line err = %v", err)
	}
	long := strings.Repeat("я", 256)
	if _, err := s.TagLine(ctx, domain.TagInput{TranscriptID: tr.ID, LineID: 1, Speaker: long}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("long speaker err = %v", err)
	}
}

func TestBulkTag_AllOrNothing(t *testing.T) {
	s, _ := newSvc(t)
	tr := seed(t, s, "нэг", "хоёр", "гурав")
	ctx := context.Background()

	res, err := s.BulkTag(ctx, domain.BulkTagInput{TranscriptID: tr.ID, LineIDs: []int64{3, 1, 3}, Speaker: "Дорж", TaggedBy: "editor"})
	if err != nil {
		t.Fatalf("BulkTag: %v", err)
	}
	if res.Updated != 2 || res.Lines[0].LineNumber != 1 || res.Lines[1].LineNumber != 3 {
		t.Fatalf("result = %+v", res)
	}

	_, err = s.BulkTag(ctx, domain.BulkTagInput{TranscriptID: tr.ID, LineIDs: []int64{2, 99}, Speaker: "Бат"})
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("partial ids err = %v", err)
	}
	l, _ := s.Repo.Line(ctx, 2)
	if l.Speaker != nil {
		t.Fatalf("line 2 tagged despite failed bulk op")
	}

	if _, err := s.BulkTag(ctx, domain.BulkTagInput{TranscriptID: tr.ID}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("empty ids err = %v", err)
	}
}

func TestCommitTags_KeepsManualTags(t *testing.T) {
	s, _ := newSvc(t)
	tr := seed(t, s, "нэг", "хоёр", "гурав")
	ctx := context.Background()

	if _, err := s.TagLine(ctx, domain.TagInput{TranscriptID: tr.ID, LineID: 1, Speaker: "Гар"}); err != nil {
		t.Fatalf("TagLine: %v", err)
	}
	n, err := s.CommitTags(ctx, tr.ID, []domain.LineTag{
		{LineNumber: 1, Speaker: "Бат", Confidence: 0.95},
		{LineNumber: 2, Speaker: "Бат", Confidence: 0.9},
	}, "")
	if err != nil {
		t.Fatalf("CommitTags: %v", err)
	}
	if n != 1 {
		t.Fatalf("committed = %d, want 1", n)
	}
	l1, _ := s.Repo.Line(ctx, 1)
	l2, _ := s.Repo.Line(ctx, 2)
	if *l1.Speaker != "Гар" || *l2.Speaker != "Бат" || *l2.TaggedBy != "speakertag" {
		t.Fatalf("line1 = %v, line2 = %v by %v", *l1.Speaker, *l2.Speaker, *l2.TaggedBy)
	}
}

func TestStats(t *testing.T) {
	s, _ := newSvc(t)
	tr := seed(t, s, "нэг", "хоёр", "гурав")
	ctx := context.Background()
	if _, err := s.TagLine(ctx, domain.TagInput{TranscriptID: tr.ID, LineID: 2, Speaker: "Бат"}); err != nil {
		t.Fatalf("TagLine: %v", err)
	}
	st, err := s.Stats(ctx, tr.ID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.TotalLines != 3 || st.TaggedLines != 1 || st.UntaggedLines != 2 {
		t.Fatalf("stats = %+v", st)
	}
	testkit.MustNear(t, "progress", st.Progress, 33.33)
	if len(st.Speakers) != 1 || st.Speakers[0].Name != "Бат" {
		t.Fatalf("speakers = %+v", st.Speakers)
	}
}
