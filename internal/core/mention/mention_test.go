package mention

import (
	"math"
	"reflect"
	"testing"

	"speakertag/internal/core/speakerpack"
)

func mustPack(t *testing.T) *speakerpack.Pack {
	t.Helper()
	p, err := speakerpack.Load()
	if err != nil {
		t.Fatalf("load pack: %v", err)
	}
	return p
}

type want struct {
	pattern, name, title string
	pos                  int
	conf                 float64
}

func check(t *testing.T, label string, got []Mention, exp []want) {
	t.Helper()
	if len(got) != len(exp) {
		t.Fatalf("%s: got %d mentions %+v, want %d", label, len(got), got, len(exp))
	}
	for i, w := range exp {
		g := got[i]
		if g.Pattern != w.pattern || g.Name != w.name || g.Title != w.title || g.Position != w.pos {
			t.Fatalf("%s: mention[%d] = %+v, want %+v", label, i, g, w)
		}
		if math.Abs(g.Confidence-w.conf) > 1e-9 {
			t.Fatalf("%s: mention[%d] confidence = %v, want %v", label, i, g.Confidence, w.conf)
		}
	}
}

func TestDetect_Rules(t *testing.T) {
	d := New(mustPack(t))

	cases := []struct {
		name string
		in   string
		exp  []want
	}{
		{
			name: "direct introduction",
			in:   "За. Бат сайд, би асуулт асууя.",
			exp:  []want{{"intro_za", "Бат", "сайд", 0, 0.98}},
		},
		{
			name: "introduction with honorific later in text",
			in:   "Баярлалаа. За. Лхагва гуай.",
			exp:  []want{{"intro_za", "Лхагва", "гуай", 11, 0.98}},
		},
		{
			name: "retrospective title",
			in:   "Дорж сайд асан хэлэхдээ",
			exp:  []want{{"title_asan", "Дорж", "сайд", 0, 0.95}},
		},
		{
			name: "direct address",
			in:   "Болд гишүүн та хариулна уу",
			exp:  []want{{"title_ta", "Болд", "гишүүн", 0, 0.90}},
		},
		{
			name: "hyphenated name",
			in:   "Бат-Эрдэнэ сайд та",
			exp:  []want{{"title_ta", "Бат-Эрдэнэ", "сайд", 0, 0.90}},
		},
		{
			name: "microphone assignment also reads as number name",
			in:   "3 номерын микрофон Бат",
			exp: []want{
				{"microphone_assignment", "Бат", "", 0, 0.97},
				{"number_name", "Бат", "", 0, 0.93},
			},
		},
		{
			name: "bare number and two-word name",
			in:   "за 12 номер Ганбат Дорж асуулт",
			exp:  []want{{"number_name", "Ганбат Дорж", "", 0, 0.93}},
		},
		{
			name: "honorific question",
			in:   "Энхболд гуайгаас асууя",
			exp:  []want{{"name_guai_asuuya", "Энхболд", "", 0, 0.85}},
		},
		{
			name: "possessive",
			in:   "Батын-гийн санал",
			exp:  []want{{"name_giin", "Батын", "", 0, 0.55}},
		},
		{
			name: "extension request for unknown seat is dropped",
			in:   "5 номер нэмэлт 1 минут",
			exp:  nil,
		},
		{
			name: "no speaker",
			in:   "хуралдаан үргэлжилж байна",
			exp:  nil,
		},
		{
			name: "empty",
			in:   "",
			exp:  nil,
		},
	}
	for _, tc := range cases {
		check(t, tc.name, d.Detect(tc.in), tc.exp)
	}
}

func TestDetect_LateMatchNotBoosted(t *testing.T) {
	d := New(mustPack(t))
	pad := "Энэ асуудлаар байнгын хорооны хуралдаанаар хэлэлцсэн бөгөөд санал хураалт явуулсан. "
	got := d.Detect(pad + "Дорж сайд асан")
	if len(got) != 1 {
		t.Fatalf("got %+v", got)
	}
	if got[0].Position < 50 {
		t.Fatalf("position = %d, want >= 50", got[0].Position)
	}
	if math.Abs(got[0].Confidence-0.90) > 1e-9 {
		t.Fatalf("confidence = %v, want 0.90", got[0].Confidence)
	}
}

func TestPass_ExtensionResolvesThroughRegistry(t *testing.T) {
	d := New(mustPack(t))
	ps := d.NewPass()

	first := ps.Detect("за 5 номер Сүхбат")
	check(t, "register", first, []want{{"number_name", "Сүхбат", "", 0, 0.93}})

	ext := ps.Detect("5 номер нэмэлт нэг минут")
	check(t, "resolve", ext, []want{{"extension_request", "Сүхбат", "", 0, 0.80}})
	if ext[0].Number != "5" || ext[0].FullName != "Сүхбат" {
		t.Fatalf("resolved mention = %+v", ext[0])
	}

	check(t, "other seat", ps.Detect("7 номер нэмэлт нэг минут"), nil)

	ps.Detect("5 номерын микрофон Ганболд")
	ext = ps.Detect("5 номер нэмэлт минут")
	if len(ext) != 1 || ext[0].Name != "Ганболд" {
		t.Fatalf("seat should be reassigned, got %+v", ext)
	}
	if ps.Registry().Len() != 1 {
		t.Fatalf("registry = %+v", ps.Registry().Seats())
	}
}

func TestDetect_Idempotent(t *testing.T) {
	d := New(mustPack(t))
	in := "За. Бат сайд. 3 номерын микрофон Болд. 3 номер нэмэлт нэг минут. Дорж-гийн санал."
	a := d.Detect(in)
	b := d.Detect(in)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("not idempotent:\n%+v\n%+v", a, b)
	}
	if len(a) == 0 {
		t.Fatalf("expected mentions")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Assign("03", "Бат")
	r.Assign("12", "Дорж")
	r.Assign("", "ignored")
	if name, ok := r.Occupant("3"); !ok || name != "Бат" {
		t.Fatalf("Occupant(3) = %q,%v", name, ok)
	}
	seats := r.Seats()
	if len(seats) != 2 || seats[0].Number != "3" || seats[1].Number != "12" {
		t.Fatalf("Seats = %+v", seats)
	}
}

func TestFullName(t *testing.T) {
	cases := [][3]string{
		{"Бат", "сайд", "Бат сайд"},
		{"Бат", "", "Бат"},
		{"", "сайд", "сайд"},
	}
	for _, c := range cases {
		if got := FullName(c[0], c[1]); got != c[2] {
			t.Fatalf("FullName(%q,%q) = %q, want %q", c[0], c[1], got, c[2])
		}
	}
}
