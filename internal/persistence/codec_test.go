package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/petrijr/pager/pkg/diary"
)

func TestFoodCodec_TruncatesToMillis(t *testing.T) {
	in := sampleFood("Yogurt", baseTime.Add(2*time.Millisecond+300*time.Microsecond))
	in.ID = 7

	data, err := EncodeFood(in)
	require.NoError(t, err)

	out, err := DecodeFood(data)
	require.NoError(t, err)
	require.Equal(t, baseTime.Add(2*time.Millisecond), out.CreatedAt)
	require.Equal(t, normalize(in), out)
}

func TestFoodCodec_EmptyPayload(t *testing.T) {
	_, err := DecodeFood(nil)
	require.Error(t, err)

	_, err = DecodeFood([]byte("not gob"))
	require.Error(t, err)

	var zero diary.Food
	_, err = EncodeFood(zero)
	require.NoError(t, err)
}
