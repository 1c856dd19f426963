package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/shoecart/internal/ports"
	"github.com/Gunvolt24/shoecart/internal/ports/mocks"
	"github.com/Gunvolt24/shoecart/pkg/ctxmeta"
	"github.com/Gunvolt24/shoecart/pkg/logger"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	ctxErr error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.ctxErr = ctx.Err()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { w.closed = true; return nil }

func TestKafkaSink_Publishes(t *testing.T) {
	w := &fakeWriter{}
	sink := NewKafkaSink(w, logger.NewNop(), time.Second)
	sink.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	ctx := ctxmeta.WithRequestID(context.Background(), "req-1")
	ctx = ctxmeta.WithSource(ctx, ctxmeta.SourceHTTP)
	sink.Error(ctx, MsgOutOfStock)

	require.Len(t, w.msgs, 1)
	require.Equal(t, "req-1", string(w.msgs[0].Key))

	var n Notification
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &n))
	require.Equal(t, "error", n.Level)
	require.Equal(t, MsgOutOfStock, n.Message)
	require.Equal(t, "req-1", n.RequestID)
	require.Equal(t, "http", n.Source)
	require.True(t, n.Time.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))

	require.NoError(t, sink.Close())
	require.True(t, w.closed)
}

func TestKafkaSink_SurvivesCancelledRequest(t *testing.T) {
	w := &fakeWriter{}
	sink := NewKafkaSink(w, logger.NewNop(), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink.Error(ctx, MsgAddFailed)

	require.Len(t, w.msgs, 1)
	require.NoError(t, w.ctxErr)
}

func TestKafkaSink_PublishErrorIsLogged(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Errorf(gomock.Any(), gomock.Any(), gomock.Any()).Times(1)

	sink := NewKafkaSink(&fakeWriter{err: errors.New("broker down")}, log, 0)
	sink.Error(context.Background(), MsgRemoveFailed) // не паникует и не возвращает ошибку
}

func TestLogSink(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warnf(gomock.Any(), "notification: %s", MsgUpdateFailed).Times(1)

	NewLogSink(log).Error(context.Background(), MsgUpdateFailed)
}

func TestFanout_CallsEverySink(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := mocks.NewMockNotifier(ctrl)
	b := mocks.NewMockNotifier(ctrl)

	gomock.InOrder(
		a.EXPECT().Error(gomock.Any(), MsgAddFailed),
		b.EXPECT().Error(gomock.Any(), MsgAddFailed),
	)
	Fanout([]ports.Notifier{a, b}).Error(context.Background(), MsgAddFailed)
}
