package lark

// apiEnvelope is the common wrapper around every open-platform response.
type apiEnvelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

type tokenResponse struct {
	apiEnvelope
	TenantAccessToken string `json:"tenant_access_token"`
	Expire            int64  `json:"expire"`
}

// TableInfo is a read-only projection of a Bitable table.
type TableInfo struct {
	TableID string `json:"table_id"`
	Name    string `json:"name"`
}

type tablesResponse struct {
	apiEnvelope
	Data struct {
		Items []TableInfo `json:"items"`
	} `json:"data"`
}

// RecordInfo is a read-only projection of a Bitable record.
type RecordInfo struct {
	RecordID string                `json:"record_id"`
	Fields   map[string]FieldValue `json:"fields"`
}

type recordsResponse struct {
	apiEnvelope
	Data struct {
		HasMore bool         `json:"has_more"`
		Items   []RecordInfo `json:"items"`
		Total   int          `json:"total"`
	} `json:"data"`
}

type sendMessageRequest struct {
	ReceiveID string `json:"receive_id"`
	MsgType   string `json:"msg_type"`
	Content   string `json:"content"`
}
