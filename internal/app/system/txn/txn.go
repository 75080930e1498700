// internal/app/system/txn/txn.go
package txn

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/256dpi/lungo"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var warnOnce sync.Once

// Run executes fn inside a multi-document transaction. The context handed to
// fn carries the session; every store call inside fn must use it.
//
// On deployments without transaction support (a standalone mongod) Run logs
// a warning once and executes fn directly. Writes are then applied one by one
// and a failure midway is not rolled back.
func Run(ctx context.Context, db lungo.IDatabase, logger *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			fallback(logger, err)
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc lungo.ISessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		fallback(logger, err)
		return fn(ctx)
	}
	return err
}

func fallback(logger *zap.Logger, err error) {
	warnOnce.Do(func() {
		if logger == nil {
			logger = zap.L()
		}
		logger.Warn("transactions not supported; running multi-document writes without a transaction",
			zap.Error(err))
	})
}

// IsNotSupported reports whether err means the server cannot run
// transactions (standalone server, illegal operation in this topology).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263: // IllegalOperation, transaction in a non-replica set, OperationNotSupportedInTransaction
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	hits := 0
	for _, kw := range []string{"transaction", "replica set", "session", "not supported", "illegal operation"} {
		if strings.Contains(msg, kw) {
			hits++
		}
	}
	return hits >= 2
}
