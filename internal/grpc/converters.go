package grpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Belphemur/MediaDownloader/internal/models"
)

// toValue converts any JSON-encodable value to a protobuf Value. Typed values such as
// structs go through encoding/json so their JSON field names are kept.
func toValue(v any) (*structpb.Value, error) {
	if v == nil {
		return structpb.NewNullValue(), nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", v, err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", v, err)
	}
	return structpb.NewValue(generic)
}

// convertRequestToProto builds an Invoke request
func convertRequestToProto(channel string, args []any) (*structpb.Struct, error) {
	list := make([]any, 0, len(args))
	for _, a := range args {
		v, err := toValue(a)
		if err != nil {
			return nil, err
		}
		list = append(list, v.AsInterface())
	}
	return structpb.NewStruct(map[string]any{
		"channel": channel,
		"args":    list,
	})
}

// convertRequestFromProto extracts the channel name and arguments of an Invoke request
func convertRequestFromProto(req *structpb.Struct) (string, []any, error) {
	fields := req.GetFields()
	channel := fields["channel"].GetStringValue()
	if channel == "" {
		return "", nil, fmt.Errorf("request has no channel")
	}

	var args []any
	if v, ok := fields["args"]; ok {
		switch kind := v.GetKind().(type) {
		case *structpb.Value_ListValue:
			args = kind.ListValue.AsSlice()
		case *structpb.Value_NullValue:
		default:
			args = []any{v.AsInterface()}
		}
	}
	return channel, args, nil
}

// convertEnvelopeToProto encodes a response envelope
func convertEnvelopeToProto(env models.Envelope) (*structpb.Struct, error) {
	out := &structpb.Struct{Fields: map[string]*structpb.Value{
		"code": structpb.NewNumberValue(float64(env.Code)),
	}}
	if env.OK() {
		data, err := toValue(env.Data)
		if err != nil {
			return nil, err
		}
		out.Fields["data"] = data
	} else {
		out.Fields["msg"] = structpb.NewStringValue(env.Msg)
	}
	return out, nil
}

// convertEnvelopeFromProto decodes a response envelope
func convertEnvelopeFromProto(s *structpb.Struct) models.Envelope {
	fields := s.GetFields()
	env := models.Envelope{
		Code: int(fields["code"].GetNumberValue()),
		Msg:  fields["msg"].GetStringValue(),
	}
	if data, ok := fields["data"]; ok {
		env.Data = data.AsInterface()
	}
	return env
}

// convertEventToProto encodes an event pushed on Subscribe
func convertEventToProto(e models.Event) (*structpb.Struct, error) {
	data, err := toValue(e.Data)
	if err != nil {
		return nil, err
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"channel": structpb.NewStringValue(e.Channel),
		"data":    data,
	}}, nil
}

// convertEventFromProto decodes an event received on Subscribe
func convertEventFromProto(s *structpb.Struct) models.Event {
	fields := s.GetFields()
	e := models.Event{Channel: fields["channel"].GetStringValue()}
	if data, ok := fields["data"]; ok {
		e.Data = data.AsInterface()
	}
	return e
}
