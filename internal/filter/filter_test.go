package filter

import (
	"slices"
	"testing"

	"github.com/Freeeeeet/consult_portal/internal/model"
	"github.com/stretchr/testify/assert"
)

func fixture() []*model.Appointment {
	return []*model.Appointment{
		{ID: 1, StudentName: "Anna Ivanova", StudentCode: "S-101", Status: model.StatusPending, Date: "2025-03-01"},
		{ID: 2, StudentName: "Boris Petrov", StudentCode: "S-102", Status: model.StatusPending, Date: "2025-03-01"},
		{ID: 3, StudentName: "Dmitry", StudentCode: "S-103", LecturerName: "Ivan Sokolov", Status: model.StatusPending, Date: "2025-03-02"},
		{ID: 4, StudentName: "Elena", StudentCode: "S-104", Status: model.StatusApproved, Date: "2025-03-02"},
		{ID: 5, StudentName: "Roman", StudentCode: "S-105", Status: model.StatusApproved, Date: "2025-03-03"},
		{ID: 6, StudentName: "Oleg", StudentCode: "AN-7", Status: model.StatusPending, Date: "2025-03-04"},
		{ID: 7, StudentName: "Pavel", StudentCode: "S-107", Status: model.StatusRejected, Date: "2025-03-04"},
		{ID: 8, StudentName: "Diana", StudentCode: "S-108", Status: model.StatusCanceled, Date: "2025-03-05"},
		{ID: 9, StudentName: "Yana", StudentCode: "S-109", Status: model.StatusPending, Date: "2025-03-06"},
		{ID: 10, StudentName: "Kirill", StudentCode: "S-110", Status: model.StatusCompleted, Date: "2025-03-07"},
	}
}

func ids(items []*model.Appointment) []int64 {
	out := make([]int64, 0, len(items))
	for _, a := range items {
		out = append(out, a.ID)
	}
	return out
}

func TestApply_SearchAndStatus(t *testing.T) {
	items := fixture()

	got := Apply(items, Criteria{SearchTerm: "an", Statuses: []model.AppointmentStatus{model.StatusPending}})

	// 1 Anna, 3 Ivan (lecturer), 6 AN-7, 9 Yana; Roman/Diana не PENDING
	assert.Equal(t, []int64{1, 3, 6, 9}, ids(got))
}

func TestApply_EmptyCriteriaKeepsEverythingInOrder(t *testing.T) {
	items := fixture()

	got := Apply(items, Criteria{})

	assert.Equal(t, ids(items), ids(got))
}

func TestApply_DoesNotMutateSource(t *testing.T) {
	items := fixture()
	before := slices.Clone(items)

	_ = Apply(items, Criteria{Statuses: []model.AppointmentStatus{model.StatusApproved}})

	assert.Equal(t, before, items)
}

func TestApply_ExactDate(t *testing.T) {
	got := Apply(fixture(), Criteria{Date: "2025-03-02"})
	assert.Equal(t, []int64{3, 4}, ids(got))
}

func TestApply_InclusiveRange(t *testing.T) {
	got := Apply(fixture(), Criteria{From: "2025-03-04", To: "2025-03-06"})
	assert.Equal(t, []int64{6, 7, 8, 9}, ids(got))

	got = Apply(fixture(), Criteria{From: "2025-03-06"})
	assert.Equal(t, []int64{9, 10}, ids(got))
}

func TestApply_AllPredicatesCombined(t *testing.T) {
	got := Apply(fixture(), Criteria{
		SearchTerm: "S-10",
		Statuses:   []model.AppointmentStatus{model.StatusPending, model.StatusApproved},
		From:       "2025-03-01",
		To:         "2025-03-02",
	})
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(got))
}

func TestSearch_CaseInsensitive(t *testing.T) {
	match := Search("ANNA")
	assert.True(t, match(&model.Appointment{StudentName: "anna"}))
	assert.False(t, match(&model.Appointment{StudentName: "boris"}))
	assert.Nil(t, Search("  "))
}
