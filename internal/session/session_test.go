package session_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/spendviz/internal/session"
	"github.com/MrJamesThe3rd/spendviz/internal/spend"
)

func dataset(t *testing.T) *spend.Dataset {
	t.Helper()

	ds, err := spend.Load(strings.NewReader("Account_Name,Product_Product_Name,Price_Book_Price_Book_Name,Invoice_Date,Total\nA,P,PB,2024-01-01,1\n"))
	require.NoError(t, err)

	return ds
}

func TestCache_PutGetDelete(t *testing.T) {
	c := session.NewCache(time.Minute)
	ds := dataset(t)

	id := c.Put(ds)
	assert.NotEqual(t, uuid.Nil, id)

	got, ok := c.Get(id)
	require.True(t, ok)
	assert.Same(t, ds, got)
	assert.Equal(t, 1, c.Len())

	c.Delete(id)

	_, ok = c.Get(id)
	assert.False(t, ok)
}

func TestCache_DistinctIDs(t *testing.T) {
	c := session.NewCache(time.Minute)

	a := c.Put(dataset(t))
	b := c.Put(dataset(t))

	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, c.Len())
}

func TestCache_UnknownID(t *testing.T) {
	c := session.NewCache(0)

	_, ok := c.Get(uuid.New())
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	c := session.NewCache(20 * time.Millisecond)
	id := c.Put(dataset(t))

	time.Sleep(60 * time.Millisecond)

	_, ok := c.Get(id)
	assert.False(t, ok)
}

func TestCache_AccessExtendsLifetime(t *testing.T) {
	c := session.NewCache(300 * time.Millisecond)
	id := c.Put(dataset(t))

	time.Sleep(200 * time.Millisecond)

	_, ok := c.Get(id)
	require.True(t, ok)

	time.Sleep(200 * time.Millisecond)

	_, ok = c.Get(id)
	assert.True(t, ok)
}

func TestCache_ImplementsStore(t *testing.T) {
	var _ session.Store = session.NewCache(time.Minute)
}
