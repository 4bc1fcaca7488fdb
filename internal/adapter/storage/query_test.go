package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhere(t *testing.T) {
	var w where
	assert.Equal(t, "", w.String())

	w.add("category = %s", "Gaming")
	w.add("latitude BETWEEN %s AND %s", 1.0, 2.0)
	w.addSame("(title ILIKE ? OR description ILIKE ?)", "%x%")

	assert.Equal(t, " WHERE category = $1 AND latitude BETWEEN $2 AND $3 AND (title ILIKE $4 OR description ILIKE $4)", w.String())
	assert.Equal(t, []any{"Gaming", 1.0, 2.0, "%x%"}, w.args)

	clause, args := w.page(10, 20)
	assert.Equal(t, " LIMIT $5 OFFSET $6", clause)
	assert.Equal(t, []any{"Gaming", 1.0, 2.0, "%x%", 10, 20}, args)
	assert.Len(t, w.args, 4, "page must not grow the filter args")
}

func TestLike(t *testing.T) {
	assert.Equal(t, "%Koramangala%", like("Koramangala"))
	assert.Equal(t, `%50\% off\_now%`, like("50% off_now"))
}

func TestExpiryQueries_StrictlyBefore(t *testing.T) {
	for name, query := range map[string]string{
		"notices":        expireNoticesQuery,
		"advertisements": expireAdvertisementsQuery,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, query, "expires_at < $1")
			assert.NotContains(t, query, "<=")
			assert.Contains(t, query, "status = 'active'")
		})
	}
}
