package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext_Threshold(t *testing.T) {
	assert.Equal(t, StageAlert, Next(StageTransaction, 0.64, DefaultThreshold))
	assert.Equal(t, StageRegulatory, Next(StageTransaction, 0.65, DefaultThreshold))
	assert.Equal(t, StageRegulatory, Next(StageTransaction, 1, DefaultThreshold))
	assert.Equal(t, StageAlert, Next(StageRegulatory, 0, DefaultThreshold))
	assert.Equal(t, StageDone, Next(StageAlert, 1, DefaultThreshold))
	assert.Equal(t, StageDone, Next(StageDone, 1, DefaultThreshold))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate([]Stage{StageTransaction, StageAlert, StageDone}))
	assert.NoError(t, Validate([]Stage{StageTransaction, StageRegulatory, StageAlert, StageDone}))
	assert.Error(t, Validate(nil))
	assert.Error(t, Validate([]Stage{StageRegulatory, StageAlert}))
	assert.Error(t, Validate([]Stage{StageTransaction, StageDone}))
	assert.Error(t, Validate([]Stage{StageTransaction, StageAlert, StageRegulatory}))
}

func TestNext_FollowsTable(t *testing.T) {
	for _, from := range []Stage{StageTransaction, StageRegulatory, StageAlert} {
		for _, score := range []float64{0, 0.35, 0.64, 0.65, 1} {
			to := Next(from, score, DefaultThreshold)
			assert.True(t, CanTransition(from, to), "%s -> %s at %v", from, to, score)
		}
	}
	assert.False(t, CanTransition(StageDone, StageTransaction))
}
