package grpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// maxExactInt float64 能精確表示的最大整數
const maxExactInt = 1 << 53

// encodeStruct 將 Go 值轉成 structpb.Struct
//
// structpb 的數字是 double，帶小數或超過 2^53 的數字改以字串傳遞，避免金額失真；
// decimal.Decimal 可從字串或數字還原
func encodeStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("message is not an object: %w", err)
	}
	fields := make(map[string]*structpb.Value, len(m))
	for k, item := range m {
		fields[k] = toValue(item)
	}
	return &structpb.Struct{Fields: fields}, nil
}

func toValue(v any) *structpb.Value {
	switch x := v.(type) {
	case nil:
		return structpb.NewNullValue()
	case bool:
		return structpb.NewBoolValue(x)
	case string:
		return structpb.NewStringValue(x)
	case json.Number:
		if n, err := strconv.ParseInt(x.String(), 10, 64); err == nil && math.Abs(float64(n)) <= maxExactInt {
			return structpb.NewNumberValue(float64(n))
		}
		return structpb.NewStringValue(x.String())
	case []any:
		values := make([]*structpb.Value, 0, len(x))
		for _, item := range x {
			values = append(values, toValue(item))
		}
		return structpb.NewListValue(&structpb.ListValue{Values: values})
	case map[string]any:
		fields := make(map[string]*structpb.Value, len(x))
		for k, item := range x {
			fields[k] = toValue(item)
		}
		return structpb.NewStructValue(&structpb.Struct{Fields: fields})
	}
	// json.Decoder 不會產生其他型別
	return structpb.NewNullValue()
}

// decodeStruct 將 structpb.Struct 還原成 Go 值
func decodeStruct(s *structpb.Struct, v any) error {
	if s == nil {
		s = &structpb.Struct{}
	}
	raw, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal struct: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	return nil
}

// decodeRequest 請求格式錯誤一律回 InvalidArgument
func decodeRequest(s *structpb.Struct, v any) error {
	if err := decodeStruct(s, v); err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return nil
}
