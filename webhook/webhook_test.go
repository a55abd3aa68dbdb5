package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/meeplesync/models"
)

func TestDeliverSignsPayload(t *testing.T) {
	const secret = "topsecret"
	var gotSig string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-MeepleSync-Signature")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	event := &Event{
		Type:      EventSyncCompleted,
		Timestamp: time.Now().Unix(),
		Data:      models.SyncResult{Username: "meeple_tester", Owned: 3},
	}
	require.NoError(t, Deliver(context.Background(), srv.URL, secret, event))

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(gotBody)
	assert.Equal(t, "sha256="+hex.EncodeToString(mac.Sum(nil)), gotSig)
}

func TestDeliverNoSecretNoSignature(t *testing.T) {
	var gotSig string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-MeepleSync-Signature")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, Deliver(context.Background(), srv.URL, "", &Event{Type: EventBatchCompleted}))
	assert.Empty(t, gotSig)
}

func TestDeliverReportsEndpointErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := Deliver(context.Background(), srv.URL, "", &Event{Type: EventBatchCompleted})
	assert.ErrorContains(t, err, "status 500")
}

func TestNilNotifierDropsEvents(t *testing.T) {
	var n *Notifier
	assert.NotPanics(t, func() {
		n.SyncCompleted(models.SyncResult{})
		n.BatchCompleted(models.BatchStatus{})
	})
	assert.Nil(t, NewNotifier("", "secret"))
}
