package httpserver

// Common request/response types for HTTP handlers

// mintReq asks for count fresh random ids.
type mintReq struct {
	Count int `json:"count"`
}

// mintResp returns freshly minted ids in encoded form.
type mintResp struct {
	IDs []string `json:"ids"`
}

// inspectResp breaks one id into its parts.
type inspectResp struct {
	ID        string `json:"id"`
	Raw       string `json:"raw"`
	Time      string `json:"time"`
	Timestamp uint32 `json:"timestamp"`
	Payload   string `json:"payload"`
}

// streamNextReq asks a ledger stream for count ids.
type streamNextReq struct {
	Stream string `json:"stream"`
	Count  int    `json:"count"`
}

// streamNextResp returns ids minted from a ledger stream.
type streamNextResp struct {
	Stream string   `json:"stream"`
	IDs    []string `json:"ids"`
}

// streamsResp lists known stream names.
type streamsResp struct {
	Streams []string `json:"streams"`
}

// streamResp is a stream state snapshot with its current range bounds.
type streamResp struct {
	Name        string `json:"name"`
	Seed        string `json:"seed"`
	Count       uint32 `json:"count"`
	Rotations   uint64 `json:"rotations"`
	CreatedAtMs int64  `json:"createdAtMs"`
	Min         string `json:"min"`
	Max         string `json:"max"`
}
