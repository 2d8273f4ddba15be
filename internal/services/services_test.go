package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"invadmin/internal/models"
	"invadmin/internal/services/servicetest"
)

func strp(s string) *string  { return &s }
func f64(f float64) *float64 { return &f }
func boolp(b bool) *bool     { return &b }
func ctx() context.Context   { return context.Background() }

func newItem(name string) models.Item {
	return models.Item{
		Name: name, Category: name, VendorName: name, Quantity: 100, TotalQuantity: 100,
		Price: f64(2.5), IsScrap: true, ScrappedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestUpserterOutcomes(t *testing.T) {
	coll := &servicetest.Collection{}
	up := NewItemUpserter(coll)

	outcome, err := up.Upsert(ctx(), newItem("Bolt M8"))
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeInserted, outcome)

	outcome, err = up.Upsert(ctx(), newItem("Bolt M8"))
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeUnchanged, outcome)

	changed := newItem("Bolt M8")
	changed.Quantity = 50
	outcome, err = up.Upsert(ctx(), changed)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeUpdated, outcome)

	require.Len(t, coll.Docs, 1)
	assert.Equal(t, "Bolt M8", coll.Docs[0]["name"])
	assert.Nil(t, coll.Docs[0]["notes"], "absent fields are written as null")
	assert.Contains(t, coll.Docs[0], "notes")
}

func TestUpserterIdempotentRerun(t *testing.T) {
	coll := &servicetest.Collection{}
	up := NewUserUpserter(coll)
	users := []models.User{
		{Name: "Jane Doe", Email: "jane.doe@gmail.com", Role: "staff", Password: "hash", CodeNo: strp("E1")},
		{Name: "John Roe", Email: "john.roe@gmail.com", Role: "staff", Password: "hash"},
	}

	for _, run := range []int{1, 2} {
		var summary models.Summary
		for _, u := range users {
			outcome, err := up.Upsert(ctx(), u)
			require.NoError(t, err)
			summary.Record(outcome)
		}
		if run == 1 {
			assert.Equal(t, 2, summary.Inserted)
		} else {
			assert.Equal(t, 0, summary.Inserted, "second run never inserts")
			assert.Equal(t, 2, summary.Unchanged)
		}
	}
	assert.Len(t, coll.Docs, 2)
	assert.Equal(t, "hash", coll.Docs[0]["password"])
}

func TestUpserterWriteFailure(t *testing.T) {
	coll := &servicetest.Collection{FailOn: "Broken"}
	up := NewItemUpserter(coll)

	outcome, err := up.Upsert(ctx(), newItem("Broken"))
	assert.Error(t, err)
	assert.Equal(t, models.OutcomeFailedWrite, outcome)
	assert.Contains(t, err.Error(), `name="Broken"`)

	outcome, err = up.Upsert(ctx(), newItem("Fine"))
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeInserted, outcome)
}

func TestLineConfirmer(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"yes\n", true},
		{"YES\n", true},
		{"Yes\r\n", true},
		{"yes", true},
		{"y\n", false},
		{" yes\n", false},
		{"yes \n", false},
		{"no\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input)+"|"+tt.input, func(t *testing.T) {
			var out bytes.Buffer
			got, err := NewLineConfirmer(strings.NewReader(tt.input), &out).Confirm("confirm? ")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "confirm? ", out.String())
		})
	}
}

func usersWithRoles(roles ...string) *servicetest.Collection {
	coll := &servicetest.Collection{}
	for i, r := range roles {
		coll.Docs = append(coll.Docs, bson.M{"_id": i, "role": r})
	}
	return coll
}

func TestPurgeNoMatchesDoesNotPrompt(t *testing.T) {
	coll := usersWithRoles("admin", "staff")
	prompted := false
	confirmer := ConfirmFunc(func(string) (bool, error) {
		prompted = true
		return true, nil
	})
	var out bytes.Buffer

	p := NewUserPurger(coll, "users", confirmer, &out)
	result, err := p.Purge(ctx(), "user")
	require.NoError(t, err)

	assert.False(t, prompted)
	assert.Equal(t, StateEmpty, result.State)
	assert.Len(t, coll.Docs, 2)
	assert.Contains(t, out.String(), "No users found with the role 'user'")
}

func TestPurgeConfirmed(t *testing.T) {
	coll := usersWithRoles("user", "admin", "user", "user")
	var out bytes.Buffer

	p := NewUserPurger(coll, "users", NewLineConfirmer(strings.NewReader("YeS\n"), &out), &out)
	result, err := p.Purge(ctx(), "user")
	require.NoError(t, err)

	assert.Equal(t, StateDeleted, result.State)
	assert.Equal(t, int64(3), result.Matched)
	assert.Equal(t, result.Matched, result.Deleted)
	require.Len(t, coll.Docs, 1)
	assert.Equal(t, "admin", coll.Docs[0]["role"])
	assert.Contains(t, out.String(), "You are about to delete 3 user(s) from the 'users' collection.")
	assert.Contains(t, out.String(), "3 user(s) have been deleted.")
}

func TestPurgeCancelled(t *testing.T) {
	for _, input := range []string{"y\n", "no\n", "", "yes please\n"} {
		coll := usersWithRoles("user", "user")
		var out bytes.Buffer

		p := NewUserPurger(coll, "users", NewLineConfirmer(strings.NewReader(input), &out), &out)
		result, err := p.Purge(ctx(), "user")
		require.NoError(t, err)

		assert.Equal(t, StateCancelled, result.State, "input %q", input)
		assert.Equal(t, StateCancelled, p.State())
		assert.Zero(t, result.Deleted)
		assert.Len(t, coll.Docs, 2)
		assert.Contains(t, out.String(), "Deletion cancelled by user.")
	}
}

func TestPurgeCountError(t *testing.T) {
	coll := usersWithRoles("user")
	coll.CountErr = errors.New("boom")

	p := NewUserPurger(coll, "users", AlwaysConfirm, &bytes.Buffer{})
	_, err := p.Purge(ctx(), "user")
	assert.Error(t, err)
	assert.Equal(t, StateConnected, p.State())
}

func TestPurgeDeleteError(t *testing.T) {
	coll := usersWithRoles("user")
	coll.DeleteErr = errors.New("not authorized")

	p := NewUserPurger(coll, "users", AlwaysConfirm, &bytes.Buffer{})
	result, err := p.Purge(ctx(), "user")
	assert.Error(t, err)
	assert.Equal(t, StateConfirmationPending, result.State)
	assert.Len(t, coll.Docs, 1)
}

func TestComputeTotal(t *testing.T) {
	tests := []struct {
		name string
		item models.ItemTotals
		want float64
	}{
		{name: "no history", item: models.ItemTotals{Quantity: f64(5)}, want: 5},
		{name: "missing quantity", item: models.ItemTotals{}, want: 0},
		{
			name: "assigned and returned",
			item: models.ItemTotals{Quantity: f64(5), AssignmentHistory: []models.Assignment{
				{Action: "assigned", Quantity: f64(3)},
				{Action: "returned", Quantity: f64(1)},
				{Action: "assigned"},
			}},
			want: 8,
		},
		{
			name: "negative net clamps to zero",
			item: models.ItemTotals{Quantity: f64(2), AssignmentHistory: []models.Assignment{
				{Action: "returned", Quantity: f64(4)},
			}},
			want: 2,
		},
		{
			name: "unknown action ignored",
			item: models.ItemTotals{Quantity: f64(1), AssignmentHistory: []models.Assignment{
				{Action: "scrapped", Quantity: f64(9)},
			}},
			want: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeTotal(tt.item))
		})
	}
}

func TestTotalsFixerUpdatesOnlyDrifted(t *testing.T) {
	ok := primitive.NewObjectID()
	drifted := primitive.NewObjectID()
	missing := primitive.NewObjectID()
	coll := &servicetest.Collection{Docs: []bson.M{
		{"_id": ok, "name": "ok", "quantity": 5, "totalQuantity": 5},
		{"_id": drifted, "name": "drifted", "quantity": 5, "totalQuantity": 5, "assignmentHistory": bson.A{
			bson.M{"action": "assigned", "quantity": 2},
		}},
		{"_id": missing, "name": "missing", "quantity": 1},
	}}

	updated, err := NewTotalsFixer(coll).Fix(ctx())
	require.NoError(t, err)
	assert.Equal(t, 2, updated)
	assert.Equal(t, 2, coll.Updates)
	assert.Equal(t, int64(7), coll.Docs[1]["totalQuantity"])
	assert.Equal(t, int64(1), coll.Docs[2]["totalQuantity"])
}

func TestTotalsFixerCoercesNonNumericFields(t *testing.T) {
	coll := &servicetest.Collection{Docs: []bson.M{
		{"_id": primitive.NewObjectID(), "quantity": "4", "totalQuantity": "4"},
		{"_id": primitive.NewObjectID(), "quantity": "n/a", "totalQuantity": 9, "assignmentHistory": bson.A{
			bson.M{"action": "assigned", "quantity": "two"},
			bson.M{"action": "assigned", "quantity": 2.0},
			"garbage",
		}},
		{"_id": primitive.NewObjectID(), "quantity": 3, "totalQuantity": 0, "assignmentHistory": "none"},
	}}

	updated, err := NewTotalsFixer(coll).Fix(ctx())
	require.NoError(t, err)
	assert.Equal(t, 3, updated)
	assert.Equal(t, int64(4), coll.Docs[0]["totalQuantity"])
	assert.Equal(t, int64(3), coll.Docs[1]["totalQuantity"], "non-numeric history quantity counts as 1")
	assert.Equal(t, int64(3), coll.Docs[2]["totalQuantity"])
}

func TestIndexFixerReplacesLegacyIndex(t *testing.T) {
	idx := &servicetest.Indexes{Specs: []*mongo.IndexSpecification{
		{Name: "_id_"},
		{Name: "category_1", Unique: boolp(true)},
	}}

	result, err := NewIndexFixer(idx).Fix(ctx())
	require.NoError(t, err)

	assert.Equal(t, "category_1", result.Dropped)
	assert.Equal(t, "category_1_name_1", result.Created)
	assert.NoError(t, result.DropErr)
	assert.NoError(t, result.CreateErr)
	assert.Equal(t, []string{"_id_", "category_1_name_1"}, result.Indexes)
}

func TestIndexFixerNoop(t *testing.T) {
	idx := &servicetest.Indexes{Specs: []*mongo.IndexSpecification{
		{Name: "_id_"},
		{Name: "category_1"},
		{Name: "category_1_name_1", Unique: boolp(true)},
	}}

	result, err := NewIndexFixer(idx).Fix(ctx())
	require.NoError(t, err)
	assert.Empty(t, result.Dropped)
	assert.Empty(t, result.Created)
	assert.Empty(t, idx.Dropped)
	assert.Empty(t, idx.Created)
}

func TestIndexFixerReportsErrors(t *testing.T) {
	idx := &servicetest.Indexes{
		Specs:     []*mongo.IndexSpecification{{Name: "category_1", Unique: boolp(true)}},
		DropErr:   errors.New("drop failed"),
		CreateErr: errors.New("E11000 duplicate key"),
	}

	result, err := NewIndexFixer(idx).Fix(ctx())
	require.NoError(t, err)
	assert.EqualError(t, result.DropErr, "drop failed")
	assert.Error(t, result.CreateErr)
	assert.Empty(t, result.Created)
}
