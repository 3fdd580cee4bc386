package ultra

// RRSet is a resource record set as returned by the rrsets endpoint.
type RRSet struct {
	OwnerName string   `json:"ownerName"`
	RRType    string   `json:"rrtype"`
	TTL       uint32   `json:"ttl"`
	RData     []string `json:"rdata"`
	Profile   *Profile `json:"profile,omitempty"`
}

// Profile marks pool rrsets. Context identifies the pool schema.
type Profile struct {
	Context     string `json:"@context"`
	Order       string `json:"order,omitempty"`
	Description string `json:"description,omitempty"`
}

// RRSetPayload is the body of an rrset create or update.
type RRSetPayload struct {
	TTL     uint32   `json:"ttl"`
	RData   []string `json:"rdata"`
	Profile *Profile `json:"profile,omitempty"`
}

type zoneListResponse struct {
	CursorInfo cursorInfo  `json:"cursorInfo"`
	Zones      []zoneEntry `json:"zones"`
}

type cursorInfo struct {
	First    string `json:"first,omitempty"`
	Previous string `json:"previous,omitempty"`
	Next     string `json:"next,omitempty"`
	Last     string `json:"last,omitempty"`
}

type zoneEntry struct {
	Properties zoneProperties `json:"properties"`
}

type zoneProperties struct {
	Name        string `json:"name"`
	AccountName string `json:"accountName,omitempty"`
	Type        string `json:"type,omitempty"`
	Status      string `json:"status,omitempty"`
}

type createZoneRequest struct {
	Properties        zoneProperties    `json:"properties"`
	PrimaryCreateInfo primaryCreateInfo `json:"primaryCreateInfo"`
}

type primaryCreateInfo struct {
	CreateType string `json:"createType"`
}

type rrsetListResponse struct {
	ZoneName   string     `json:"zoneName"`
	RRSets     []RRSet    `json:"rrSets"`
	ResultInfo resultInfo `json:"resultInfo"`
}

type resultInfo struct {
	TotalCount    int `json:"totalCount"`
	Offset        int `json:"offset"`
	ReturnedCount int `json:"returnedCount"`
}

type apiError struct {
	ErrorCode    int    `json:"errorCode"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}
