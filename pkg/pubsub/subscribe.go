package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/colonies/pkg/rpc"
)

// Result holds every record delivered before the session ended.
type Result[T any] struct {
	Records     []T
	Termination Termination
}

// Subscribe runs one session to completion. consumer sees each non-empty
// batch and returns false to stop; a nil consumer keeps listening until the
// server closes the stream or the deadline expires. On error the records
// received so far are still returned.
func Subscribe[T any](ctx context.Context, c *rpc.Client, req Request, consumer func([]T) bool) (Result[T], error) {
	var result Result[T]
	s, err := Dial(ctx, c, req)
	if err != nil {
		return result, err
	}
	defer s.Close()

	for raw, streamErr := range s.Batches(ctx) {
		if streamErr != nil {
			return result, streamErr
		}
		batch, err := decodeRecords[T](raw)
		if err != nil {
			s.terminate(StateFailed, TerminationNone)
			return result, &rpc.Error{Kind: rpc.KindDecode, Err: fmt.Errorf("%s record: %w", req.PayloadType, err)}
		}
		result.Records = append(result.Records, batch...)
		if consumer != nil && !consumer(batch) {
			break
		}
	}

	result.Termination = s.Termination()
	log.Debug().
		Str("payloadtype", req.PayloadType).
		Int("records", len(result.Records)).
		Str("termination", result.Termination.String()).
		Msg("pubsub.Subscribe done")
	return result, nil
}

func decodeRecords[T any](raw []json.RawMessage) ([]T, error) {
	batch := make([]T, 0, len(raw))
	for _, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			return nil, err
		}
		batch = append(batch, v)
	}
	return batch, nil
}
