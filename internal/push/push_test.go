package push

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estate_backend/internal/models"
)

func browserSubscription(t *testing.T, endpoint string) *models.PushSubscription {
	t.Helper()
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)

	return &models.PushSubscription{
		Kind:     models.PushKindWeb,
		Endpoint: endpoint,
		P256dh:   base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
		Auth:     base64.RawURLEncoding.EncodeToString(auth),
	}
}

func newTestWebPushSender(t *testing.T) *WebPushSender {
	t.Helper()
	pub, priv, err := GenerateVAPIDKeys()
	require.NoError(t, err)
	s, err := NewWebPushSender(pub, priv, "mailto:admin@estate.test", 60)
	require.NoError(t, err)
	return s
}

func TestWebPushSender_Delivered(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := newTestWebPushSender(t).WithHTTPClient(srv.Client())
	err := s.Send(context.Background(), browserSubscription(t, srv.URL+"/push/1"), Message{Title: "New listing", Body: "Sea View"})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Contains(t, got.Header.Get("Authorization"), "vapid")
	assert.Equal(t, "aes128gcm", got.Header.Get("Content-Encoding"))
}

func TestWebPushSender_GoneSubscription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	s := newTestWebPushSender(t).WithHTTPClient(srv.Client())
	err := s.Send(context.Background(), browserSubscription(t, srv.URL), Message{Title: "x"})
	assert.ErrorIs(t, err, ErrSubscriptionGone)
}

func TestNewWebPushSender_RequiresKeys(t *testing.T) {
	_, err := NewWebPushSender("", "", "", 0)
	assert.Error(t, err)
}

type recordingSender struct {
	calls int
}

func (r *recordingSender) Send(ctx context.Context, sub *models.PushSubscription, msg Message) error {
	r.calls++
	return nil
}

func TestKindRouter(t *testing.T) {
	web := &recordingSender{}
	router := NewKindRouter(web, nil)

	require.NoError(t, router.Send(context.Background(), &models.PushSubscription{Kind: models.PushKindWeb}, Message{}))
	assert.Equal(t, 1, web.calls)

	err := router.Send(context.Background(), &models.PushSubscription{Kind: models.PushKindExpo}, Message{})
	assert.Error(t, err)
}

func TestValidExpoToken(t *testing.T) {
	assert.True(t, ValidExpoToken("ExponentPushToken[xxxxxxxxxxxxxxxxxxxxxx]"))
	assert.False(t, ValidExpoToken("not-a-token"))
}
