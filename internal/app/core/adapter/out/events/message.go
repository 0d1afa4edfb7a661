package events

import (
	"encoding/json"
	"fmt"

	"github.com/JoeShih716/go-fund-ledger/internal/app/core/domain"
)

// ContentType 訊息內容格式
const ContentType = "application/json"

// encode 事件序列化；key 為 UserKey，讓同一使用者的事件落在同一個 partition
func encode(event domain.LedgerEvent) (key, body []byte, err error) {
	body, err = json.Marshal(event)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal ledger event: %w", err)
	}
	return []byte(event.UserKey), body, nil
}
