package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDNSResponse(t *testing.T) {
	q := Question{ID: 7, Name: "hello", Type: RRTypeTXT, Class: RRClassIN}
	rr, err := NewTXTRecord("hello", []string{"world"})
	require.NoError(t, err)

	resp, err := NewDNSResponse(q, NOERROR, []ResourceRecord{rr})
	require.NoError(t, err)
	assert.Equal(t, q.ID, resp.ID)
	assert.Equal(t, q, resp.Question)
	assert.False(t, resp.IsError())
	assert.True(t, resp.HasAnswers())
}

func TestNewDNSResponse_InvalidAnswer(t *testing.T) {
	q := Question{ID: 7, Name: "hello", Type: RRTypeTXT, Class: RRClassIN}
	bad := ResourceRecord{Name: "", Type: RRTypeTXT, Class: RRClassIN, Data: []byte{0}}

	_, err := NewDNSResponse(q, NOERROR, []ResourceRecord{bad})
	assert.Error(t, err)
}

func TestNewDNSErrorResponse(t *testing.T) {
	q := Question{ID: 9, Name: "nope", Type: RRTypeA, Class: RRClassIN}

	resp := NewDNSErrorResponse(q, NOTIMP)
	assert.Equal(t, q.ID, resp.ID)
	assert.Equal(t, NOTIMP, resp.RCode)
	assert.True(t, resp.IsError())
	assert.False(t, resp.HasAnswers())
}

func TestRCode_String(t *testing.T) {
	assert.Equal(t, "NOERROR", NOERROR.String())
	assert.Equal(t, "FORMERR", FORMERR.String())
	assert.Equal(t, "SERVFAIL", SERVFAIL.String())
	assert.Equal(t, "NOTIMP", NOTIMP.String())
	assert.Equal(t, "REFUSED", REFUSED.String())
	assert.Equal(t, "UNKNOWN(77)", RCode(77).String())
}

func TestRCode_IsValid(t *testing.T) {
	assert.True(t, NOERROR.IsValid())
	assert.True(t, RCode(10).IsValid())
	assert.False(t, RCode(11).IsValid())
}
