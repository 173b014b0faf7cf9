package models

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	CallbackServicePrefix = "svc::"
	CallbackSendYes       = "send::yes"
	CallbackSendNo        = "send::no"
	CallbackAdminPrefix   = "adm::"
)

const (
	CallbackKindService  = "service"
	CallbackKindConfirm  = "confirm"
	CallbackKindDecision = "decision"
)

// Callback разобранные данные inline-кнопки.
type Callback struct {
	Kind      string
	Index     int
	BookingID int64
	Accept    bool
}

func ServiceCallback(index int) string {
	return fmt.Sprintf("%s%d", CallbackServicePrefix, index)
}

func DecisionCallback(bookingID int64, accept bool) string {
	verdict := "cancel"
	if accept {
		verdict = "ok"
	}
	return fmt.Sprintf("%s%d::%s", CallbackAdminPrefix, bookingID, verdict)
}

func ParseCallback(data string) (Callback, error) {
	switch {
	case data == CallbackSendYes:
		return Callback{Kind: CallbackKindConfirm, Accept: true}, nil
	case data == CallbackSendNo:
		return Callback{Kind: CallbackKindConfirm}, nil
	case strings.HasPrefix(data, CallbackServicePrefix):
		idx, err := strconv.Atoi(strings.TrimPrefix(data, CallbackServicePrefix))
		if err != nil {
			return Callback{}, fmt.Errorf("bad service callback %q: %w", data, err)
		}
		return Callback{Kind: CallbackKindService, Index: idx}, nil
	case strings.HasPrefix(data, CallbackAdminPrefix):
		parts := strings.Split(strings.TrimPrefix(data, CallbackAdminPrefix), "::")
		if len(parts) != 2 {
			return Callback{}, fmt.Errorf("bad decision callback %q", data)
		}
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return Callback{}, fmt.Errorf("bad booking id in %q: %w", data, err)
		}
		switch parts[1] {
		case "ok":
			return Callback{Kind: CallbackKindDecision, BookingID: id, Accept: true}, nil
		case "cancel":
			return Callback{Kind: CallbackKindDecision, BookingID: id}, nil
		}
		return Callback{}, fmt.Errorf("bad verdict in %q", data)
	}
	return Callback{}, fmt.Errorf("unknown callback %q", data)
}
