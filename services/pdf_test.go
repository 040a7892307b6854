package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGotenbergConverter_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewGotenbergConverter(url).Convert(context.Background(), []byte("<p></p>"))
	assert.ErrorIs(t, err, ErrRendererUnavailable)
}
