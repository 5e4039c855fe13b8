package codec

import (
	"fmt"

	"hexbot/internal/domain"
)

// EncodeRequest serializes a request sent by seat.
func EncodeRequest(seat int, req domain.Request) (int64, []byte, error) {
	op, body, err := requestBody(req)
	if err != nil {
		return 0, nil, err
	}
	data, err := marshal(seat, body)
	if err != nil {
		return 0, nil, err
	}
	return op, data, nil
}

func requestBody(req domain.Request) (int64, map[string]any, error) {
	switch v := req.(type) {
	case domain.RollDice:
		return OpRollDice, map[string]any{}, nil
	case domain.BuildRequest:
		return OpBuildRequest, map[string]any{"piece": v.Piece.String()}, nil
	case domain.PutPiece:
		return OpPutPiece, map[string]any{"piece": v.Piece.String(), "coord": v.Coord}, nil
	case domain.BuyDevCard:
		return OpBuyDevCard, map[string]any{}, nil
	case domain.PlayDevCard:
		return OpPlayDevCard, map[string]any{"card": v.Card.String()}, nil
	case domain.DiscoveryPick:
		return OpDiscoveryPick, map[string]any{"resources": bundleValue(v.Resources)}, nil
	case domain.MonopolyPick:
		return OpMonopolyPick, map[string]any{"resource": v.Resource.String()}, nil
	case domain.MakeOffer:
		return OpMakeOffer, map[string]any{"offer": offerValue(v.Offer)}, nil
	case domain.AcceptOffer:
		return OpAcceptOffer, map[string]any{"from": v.From}, nil
	case domain.RejectOffer:
		return OpRejectOffer, map[string]any{}, nil
	case domain.ClearOffer:
		return OpClearOffer, map[string]any{}, nil
	case domain.BankTrade:
		return OpBankTrade, map[string]any{"give": bundleValue(v.Give), "get": bundleValue(v.Get)}, nil
	case domain.MoveRobber:
		return OpMoveRobber, map[string]any{"hex": v.Hex}, nil
	case domain.ChooseVictim:
		return OpChooseVictim, map[string]any{"seat": v.Seat}, nil
	case domain.Discard:
		return OpDiscard, map[string]any{"resources": bundleValue(v.Resources)}, nil
	case domain.EndTurn:
		return OpEndTurn, map[string]any{}, nil
	case domain.LeaveGame:
		return OpLeaveGame, map[string]any{"reason": v.Reason}, nil
	}
	return 0, nil, fmt.Errorf("%w: request %T", ErrUnsupportedType, req)
}

// DecodeRequest parses a request and returns the seat that sent it.
func DecodeRequest(op int64, data []byte) (int, domain.Request, error) {
	if !IsRequestOp(op) {
		return domain.NoSeat, nil, fmt.Errorf("%w: %d", ErrUnknownOpCode, op)
	}
	seat, r, err := unmarshal(data)
	if err != nil {
		return domain.NoSeat, nil, err
	}
	req := readRequest(op, r)
	if r.err != nil {
		return domain.NoSeat, nil, fmt.Errorf("op %d: %w", op, r.err)
	}
	return seat, req, nil
}

func readRequest(op int64, r *reader) domain.Request {
	switch op {
	case OpRollDice:
		return domain.RollDice{}
	case OpBuildRequest:
		return domain.BuildRequest{Piece: r.piece("piece")}
	case OpPutPiece:
		return domain.PutPiece{Piece: r.piece("piece"), Coord: r.int("coord")}
	case OpBuyDevCard:
		return domain.BuyDevCard{}
	case OpPlayDevCard:
		return domain.PlayDevCard{Card: r.card("card")}
	case OpDiscoveryPick:
		return domain.DiscoveryPick{Resources: r.bundle("resources")}
	case OpMonopolyPick:
		return domain.MonopolyPick{Resource: r.resource("resource")}
	case OpMakeOffer:
		return domain.MakeOffer{Offer: r.offer("offer")}
	case OpAcceptOffer:
		return domain.AcceptOffer{From: r.int("from")}
	case OpRejectOffer:
		return domain.RejectOffer{}
	case OpClearOffer:
		return domain.ClearOffer{}
	case OpBankTrade:
		return domain.BankTrade{Give: r.bundle("give"), Get: r.bundle("get")}
	case OpMoveRobber:
		return domain.MoveRobber{Hex: r.int("hex")}
	case OpChooseVictim:
		return domain.ChooseVictim{Seat: r.int("seat")}
	case OpDiscard:
		return domain.Discard{Resources: r.bundle("resources")}
	case OpEndTurn:
		return domain.EndTurn{}
	default:
		return domain.LeaveGame{Reason: r.str("reason")}
	}
}
