package board

import (
	"reflect"
	"testing"
)

func laneIDs(b *Board, column Column) []string {
	for _, lane := range b.Lanes() {
		if lane.Column == column {
			return lane.TaskIDs
		}
	}
	return nil
}

func TestAddPrependsToQueueOnce(t *testing.T) {
	t.Parallel()

	b := New()
	b.Add("a")
	b.Add("b")
	b.Add("a")

	if got := laneIDs(b, ColumnQueue); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Fatalf("queue = %v, want [b a]", got)
	}
}

func TestMoveAcrossColumnsAndWithinColumn(t *testing.T) {
	t.Parallel()

	b := New()
	b.Add("c")
	b.Add("b")
	b.Add("a")

	from, err := b.Move("b", ColumnInProgress, -1)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if from != ColumnQueue {
		t.Fatalf("expected move from queue, got %q", from)
	}
	if got := laneIDs(b, ColumnQueue); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Fatalf("queue = %v, want [a c]", got)
	}

	if _, err := b.Move("c", ColumnQueue, 0); err != nil {
		t.Fatalf("Move(reorder): %v", err)
	}
	if got := laneIDs(b, ColumnQueue); !reflect.DeepEqual(got, []string{"c", "a"}) {
		t.Fatalf("queue after reorder = %v, want [c a]", got)
	}

	if _, err := b.Move("a", ColumnInProgress, 0); err != nil {
		t.Fatalf("Move(insert before): %v", err)
	}
	if got := laneIDs(b, ColumnInProgress); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("inProgress = %v, want [a b]", got)
	}

	if _, err := b.Move("a", Column("later"), 0); err == nil {
		t.Fatalf("expected unknown column to fail")
	}
	if column, _ := b.ColumnOf("a"); column != ColumnInProgress {
		t.Fatalf("failed move must leave task in place, got %q", column)
	}
}

func TestMoveUnknownTaskAddsIt(t *testing.T) {
	t.Parallel()

	b := New()
	from, err := b.Move("stray", ColumnReview, 3)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if from != "" {
		t.Fatalf("expected empty origin for unknown task, got %q", from)
	}
	if got := laneIDs(b, ColumnReview); !reflect.DeepEqual(got, []string{"stray"}) {
		t.Fatalf("review = %v, want [stray]", got)
	}
}

func TestLoadOrdersPlacementsAndDropsDuplicates(t *testing.T) {
	t.Parallel()

	b := Load([]Placement{
		{TaskID: "d2", Column: ColumnDone, Position: 1},
		{TaskID: "d1", Column: ColumnDone, Position: 0},
		{TaskID: "x", Column: Column("archived"), Position: 0},
		{TaskID: "q", Column: ColumnQueue, Position: 0},
		{TaskID: "q", Column: ColumnDone, Position: 5},
	})

	placements := b.Placements()
	want := []Placement{
		{TaskID: "q", Column: ColumnQueue, Position: 0},
		{TaskID: "x", Column: ColumnQueue, Position: 1},
		{TaskID: "d1", Column: ColumnDone, Position: 0},
		{TaskID: "d2", Column: ColumnDone, Position: 1},
	}
	if !reflect.DeepEqual(placements, want) {
		t.Fatalf("placements = %#v\nwant %#v", placements, want)
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()

	b := New()
	b.Add("a")
	if !b.Remove("a") {
		t.Fatalf("expected remove to report the task")
	}
	if b.Remove("a") {
		t.Fatalf("expected second remove to report absence")
	}
	if _, found := b.ColumnOf("a"); found {
		t.Fatalf("expected task to be gone")
	}
}

func TestParseColumn(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want Column
	}{
		{raw: "queue", want: ColumnQueue},
		{raw: "inProgress", want: ColumnInProgress},
		{raw: "wip", want: ColumnInProgress},
		{raw: "done", want: ColumnDone},
	}
	for _, tc := range cases {
		got, err := ParseColumn(tc.raw)
		if err != nil || got != tc.want {
			t.Fatalf("ParseColumn(%q) = %q, %v; want %q", tc.raw, got, err, tc.want)
		}
	}
	if _, err := ParseColumn("someday"); err == nil {
		t.Fatalf("expected unknown column to fail")
	}
}
