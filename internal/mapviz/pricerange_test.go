package mapviz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeMatcher_OpenEndedMax(t *testing.T) {
	big := at("big", 0, 0, RawValue("5M"))

	open := MakeMatcher[testEntity](ValueRange{Min: 500_000, Max: OpenEndedMax})
	closed := MakeMatcher[testEntity](ValueRange{Min: 500_000, Max: 1_000_000})

	assert.True(t, open(big))
	assert.False(t, closed(big))
}

func TestMakeMatcher_InclusiveBounds(t *testing.T) {
	match := MakeMatcher[testEntity](ValueRange{Min: 250_000, Max: 750_000})

	assert.True(t, match(at("lo", 0, 0, RawValue("250K"))))
	assert.True(t, match(at("hi", 0, 0, NumberValue(750_000))))
	assert.True(t, match(at("mid", 0, 0, RawValue("$0.5M"))))
	assert.False(t, match(at("below", 0, 0, NumberValue(249_999))))
	assert.False(t, match(at("above", 0, 0, NumberValue(750_001))))
}

func TestMakeMatcher_MissingValue(t *testing.T) {
	e := at("none", 0, 0, NoValue())

	assert.True(t, MakeMatcher[testEntity](DefaultRange())(e))
	assert.False(t, MakeMatcher[testEntity](ValueRange{Min: 1, Max: OpenEndedMax})(e))
}

func TestValueRange(t *testing.T) {
	assert.True(t, DefaultRange().IsOpenEnded())
	assert.False(t, ValueRange{Max: 1_999_999}.IsOpenEnded())
	assert.True(t, ValueRange{Min: 10, Max: 20}.Contains(20))
	assert.False(t, ValueRange{Min: 10, Max: 20}.Contains(20.01))
}
