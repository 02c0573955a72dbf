package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ironroute-backend/internal/model"
)

func TestApplyMercyRule_RepaysDebtFirst(t *testing.T) {
	newMoney, newDebt := model.ApplyMercyRule(50, 10, 15)
	assert.Equal(t, 55, newMoney)
	assert.Equal(t, 0, newDebt)
}

func TestApplyMercyRule_PaymentSmallerThanDebt(t *testing.T) {
	newMoney, newDebt := model.ApplyMercyRule(50, 20, 15)
	assert.Equal(t, 50, newMoney)
	assert.Equal(t, 5, newDebt)
}

func TestApplyMercyRule_NoDebt(t *testing.T) {
	newMoney, newDebt := model.ApplyMercyRule(50, 0, 15)
	assert.Equal(t, 65, newMoney)
	assert.Equal(t, 0, newDebt)
}

func TestUpgradeEdge(t *testing.T) {
	kind, cost, ok := model.UpgradeEdge(model.TrainFastFreight, model.TrainHeavy)
	assert.True(t, ok)
	assert.Equal(t, model.UpgradeKindCrossgrade, kind)
	assert.Equal(t, model.CrossgradeCost, cost)

	_, _, ok = model.UpgradeEdge(model.TrainSuperfreight, model.TrainFreight)
	assert.False(t, ok, "upgrade graph must be acyclic: Superfreight has no outgoing edges")
}

func TestTrainCapacitySpeed(t *testing.T) {
	assert.Equal(t, 2, model.TrainFreight.Capacity())
	assert.Equal(t, 9, model.TrainFreight.Speed())
	assert.Equal(t, 3, model.TrainHeavy.Capacity())
	assert.Equal(t, 12, model.TrainFastFreight.Speed())
}

func TestTrackSegmentCanonicalKey(t *testing.T) {
	a := model.Coord{Row: 5, Col: 5}
	b := model.Coord{Row: 5, Col: 4}
	s1 := model.TrackSegment{A: a, B: b}
	s2 := model.TrackSegment{A: b, B: a}

	k1a, k1b := s1.CanonicalKey()
	k2a, k2b := s2.CanonicalKey()
	assert.Equal(t, k1a, k2a)
	assert.Equal(t, k1b, k2b)
}

func TestMajorCityGroupContains(t *testing.T) {
	g := model.MajorCityGroup{
		Name:             "TestCity",
		CenterMilepost:   model.Coord{Row: 5, Col: 5},
		OutpostMileposts: []model.Coord{{Row: 5, Col: 4}},
	}
	assert.True(t, g.Contains(model.Coord{Row: 5, Col: 4}))
	assert.False(t, g.Contains(model.Coord{Row: 6, Col: 4}))
}
