package codec

import (
	"fmt"

	"hexbot/internal/domain"
)

// EncodeMessage serializes a server message addressed to seat, or to every
// seat when seat is NoSeat.
func EncodeMessage(seat int, msg domain.Message) (int64, []byte, error) {
	op, body, err := messageBody(msg)
	if err != nil {
		return 0, nil, err
	}
	data, err := marshal(seat, body)
	if err != nil {
		return 0, nil, err
	}
	return op, data, nil
}

func messageBody(msg domain.Message) (int64, map[string]any, error) {
	switch v := msg.(type) {
	case domain.GameState:
		return OpGameState, map[string]any{"phase": v.Phase.String()}, nil
	case domain.Turn:
		return OpTurn, map[string]any{"seat": v.Seat}, nil
	case domain.PlayerElement:
		return OpPlayerElement, map[string]any{
			"seat":     v.Seat,
			"element":  int(v.Element),
			"action":   int(v.Action),
			"resource": v.Resource.String(),
			"amount":   v.Amount,
		}, nil
	case domain.ResourceCount:
		return OpResourceCount, map[string]any{"seat": v.Seat, "count": v.Count}, nil
	case domain.DiceResult:
		return OpDiceResult, map[string]any{"value": v.Value}, nil
	case domain.PiecePlaced:
		return OpPiecePlaced, map[string]any{"seat": v.Seat, "piece": v.Piece.String(), "coord": v.Coord}, nil
	case domain.RobberMoved:
		return OpRobberMoved, map[string]any{"hex": v.Hex}, nil
	case domain.OfferMade:
		return OpOfferMade, map[string]any{"offer": offerValue(v.Offer)}, nil
	case domain.OfferCleared:
		return OpOfferCleared, map[string]any{"seat": v.Seat}, nil
	case domain.OfferAccepted:
		return OpOfferAccepted, map[string]any{"accepting": v.Accepting, "offering": v.Offering}, nil
	case domain.OfferRejected:
		return OpOfferRejected, map[string]any{"seat": v.Seat}, nil
	case domain.BankTradeDone:
		return OpBankTradeDone, map[string]any{"seat": v.Seat, "give": bundleValue(v.Give), "get": bundleValue(v.Get)}, nil
	case domain.DevCardCount:
		return OpDevCardCount, map[string]any{"remaining": v.Remaining}, nil
	case domain.DevCardAction:
		return OpDevCardAction, map[string]any{"seat": v.Seat, "verb": int(v.Verb), "card": v.Card.String()}, nil
	case domain.DiscardRequest:
		return OpDiscardRequest, map[string]any{"count": v.Count}, nil
	case domain.ChooseVictimRequest:
		return OpChooseVictimRequest, map[string]any{"candidates": boolsValue(v.Candidates)}, nil
	case domain.BoardLayout:
		return OpBoardLayout, layoutValue(v.Layout), nil
	case domain.Ping:
		return OpPing, map[string]any{}, nil
	case domain.Dismiss:
		return OpDismiss, map[string]any{"reason": v.Reason}, nil
	}
	return 0, nil, fmt.Errorf("%w: message %T", ErrUnsupportedType, msg)
}

func layoutValue(l domain.StandardLayout) map[string]any {
	resources := make([]any, len(l.Resources))
	numbers := make([]any, len(l.Numbers))
	for i := range l.Resources {
		resources[i] = l.Resources[i].String()
		numbers[i] = l.Numbers[i]
	}
	ports := make([]any, len(l.Ports))
	for i, p := range l.Ports {
		ports[i] = map[string]any{"resource": p.Resource.String(), "nodes": []any{p.Nodes[0], p.Nodes[1]}}
	}
	return map[string]any{"resources": resources, "numbers": numbers, "ports": ports}
}

// DecodeMessage parses a server message and returns its addressee.
func DecodeMessage(op int64, data []byte) (int, domain.Message, error) {
	if !IsMessageOp(op) {
		return domain.NoSeat, nil, fmt.Errorf("%w: %d", ErrUnknownOpCode, op)
	}
	seat, r, err := unmarshal(data)
	if err != nil {
		return domain.NoSeat, nil, err
	}
	msg := readMessage(op, r)
	if r.err != nil {
		return domain.NoSeat, nil, fmt.Errorf("op %d: %w", op, r.err)
	}
	return seat, msg, nil
}

func readMessage(op int64, r *reader) domain.Message {
	switch op {
	case OpGameState:
		name := r.str("phase")
		phase, ok := domain.ParsePhase(name)
		if !ok && r.err == nil {
			r.fail("phase", "a phase")
		}
		return domain.GameState{Phase: phase}
	case OpTurn:
		return domain.Turn{Seat: r.int("seat")}
	case OpPlayerElement:
		return domain.PlayerElement{
			Seat:     r.int("seat"),
			Element:  domain.Element(r.int("element")),
			Action:   domain.ElementAction(r.int("action")),
			Resource: r.resource("resource"),
			Amount:   r.int("amount"),
		}
	case OpResourceCount:
		return domain.ResourceCount{Seat: r.int("seat"), Count: r.int("count")}
	case OpDiceResult:
		return domain.DiceResult{Value: r.int("value")}
	case OpPiecePlaced:
		return domain.PiecePlaced{Seat: r.int("seat"), Piece: r.piece("piece"), Coord: r.int("coord")}
	case OpRobberMoved:
		return domain.RobberMoved{Hex: r.int("hex")}
	case OpOfferMade:
		return domain.OfferMade{Offer: r.offer("offer")}
	case OpOfferCleared:
		return domain.OfferCleared{Seat: r.int("seat")}
	case OpOfferAccepted:
		return domain.OfferAccepted{Accepting: r.int("accepting"), Offering: r.int("offering")}
	case OpOfferRejected:
		return domain.OfferRejected{Seat: r.int("seat")}
	case OpBankTradeDone:
		return domain.BankTradeDone{Seat: r.int("seat"), Give: r.bundle("give"), Get: r.bundle("get")}
	case OpDevCardCount:
		return domain.DevCardCount{Remaining: r.int("remaining")}
	case OpDevCardAction:
		return domain.DevCardAction{Seat: r.int("seat"), Verb: domain.DevCardVerb(r.int("verb")), Card: r.card("card")}
	case OpDiscardRequest:
		return domain.DiscardRequest{Count: r.int("count")}
	case OpChooseVictimRequest:
		return domain.ChooseVictimRequest{Candidates: r.bools("candidates")}
	case OpBoardLayout:
		return domain.BoardLayout{Layout: readLayout(r)}
	case OpPing:
		return domain.Ping{}
	default:
		return domain.Dismiss{Reason: r.str("reason")}
	}
}

func readLayout(r *reader) domain.StandardLayout {
	var l domain.StandardLayout
	numbers := r.ints("numbers")
	names := r.list("resources")
	if r.err != nil {
		return l
	}
	if len(numbers) != domain.LayoutHexCount || len(names) != domain.LayoutHexCount {
		r.fail("resources", fmt.Sprintf("%d hexes", domain.LayoutHexCount))
		return l
	}
	copy(l.Numbers[:], numbers)
	for i, v := range names {
		res, ok := domain.ParseResource(v.GetStringValue())
		if !ok {
			r.fail("resources", "a list of resources")
			return l
		}
		l.Resources[i] = res
	}
	for _, p := range r.subs("ports") {
		nodes := p.ints("nodes")
		port := domain.Port{Resource: p.resource("resource")}
		if p.err == nil && len(nodes) != 2 {
			p.fail("nodes", "a node pair")
		}
		r.merge(p)
		if r.err != nil {
			return l
		}
		port.Nodes = [2]int{nodes[0], nodes[1]}
		l.Ports = append(l.Ports, port)
	}
	return l
}
