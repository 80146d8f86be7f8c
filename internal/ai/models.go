package ai

// ChatReply is the provider-neutral result of one chat turn.
type ChatReply struct {
	// Text is the concatenated model text; empty when the model returned none.
	Text string

	// GroundingChunks are copied from the first candidate's grounding metadata
	// without validation. Consumers must narrow them defensively.
	GroundingChunks []GroundingChunk
}

// GroundingChunk is a loosely structured citation. At most one source is set,
// and either may be nil.
type GroundingChunk struct {
	Maps *MapsSource
	Web  *WebSource
}

type MapsSource struct {
	URI     string
	Title   string
	PlaceID string
}

type WebSource struct {
	URI   string
	Title string
}
