package submission

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	values := []Value{
		{Name: "phone", Value: "+7 (904)-148-76-23", Complete: true},
		{Name: "birthday", Value: "31/12", Complete: false},
	}
	s := New(values)

	require.Zero(t, s.ID())
	_, err := uuid.Parse(s.GUID())
	require.NoError(t, err)
	require.WithinDuration(t, time.Now(), s.CreatedAt(), time.Second)
	require.Equal(t, values, s.Values())
	require.False(t, s.Complete())

	values[0].Value = "changed"
	require.Equal(t, "+7 (904)-148-76-23", s.Values()[0].Value, "New copies its input")
}

func TestNew_UniqueGUIDs(t *testing.T) {
	require.NotEqual(t, New(nil).GUID(), New(nil).GUID())
}

func TestComplete(t *testing.T) {
	require.True(t, New(nil).Complete())
	require.True(t, New([]Value{{Name: "zip", Value: "02139", Complete: true}}).Complete())
}

func TestReconstitute(t *testing.T) {
	at := time.Unix(1700000000, 0)
	s := Reconstitute(7, "guid-1", []Value{{Name: "zip", Value: "02139", Complete: true}}, at)
	require.Equal(t, int64(7), s.ID())
	require.Equal(t, "guid-1", s.GUID())
	require.Equal(t, at, s.CreatedAt())

	s.SetID(9)
	require.Equal(t, int64(9), s.ID())
}

func TestNotFoundError(t *testing.T) {
	var err error = &NotFoundError{GUID: "abc"}
	require.EqualError(t, err, "submission not found: abc")

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	require.Equal(t, "abc", nf.GUID)
}
