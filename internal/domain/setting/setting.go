package setting

import "context"

// SendToPayhub gates the dispatch endpoint. Operators toggle it in the
// datastore to take the bridge out of service without a deploy.
const SendToPayhub = "sendToPayhub"

// Store is the persistence port for named boolean feature flags.
type Store interface {
	Flag(ctx context.Context, name string) (bool, error)
	SetFlag(ctx context.Context, name string, enabled bool) error
}
