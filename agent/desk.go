package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wsoa/arena"
	"github.com/wsoa/arena/date"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// Desk binds a trading expert to one arena working tree: the agents'
// ledgers, the shared price archive, and the session flag store.
type Desk struct {
	Store    *arena.Store
	Archive  *arena.PriceArchive
	Executor *arena.Executor
	Flags    *arena.FlagStore
}

// NewDesk wires a desk over the given tree.
func NewDesk(store *arena.Store, archive *arena.PriceArchive, flags *arena.FlagStore) *Desk {
	executor := arena.NewExecutor(store, archive)
	executor.Flags = flags
	return &Desk{Store: store, Archive: archive, Executor: executor, Flags: flags}
}

// session resolves the current agent signature and trading day from the
// flag store.
func (d *Desk) session() (string, date.Date, error) {
	signature, ok, err := d.Flags.Get(arena.KeySignature)
	if err != nil {
		return "", date.Date{}, err
	}
	if !ok || signature == "" {
		return "", date.Date{}, fmt.Errorf("no %s in flag store", arena.KeySignature)
	}
	today, err := d.Flags.Today()
	if err != nil {
		return "", date.Date{}, err
	}
	return signature, today, nil
}

// Trader builds the decision expert. Its tools read the session agent's
// opening position and archive prices, and submit trades through the
// locked execution path.
func (d *Desk) Trader() *Expert {
	lib := []Function{d.positions(), d.prices(), d.trade()}

	return &Expert{
		Name: "Trader",
		Description: `This is the Trader. It manages one simulated crypto agent:
		it can read the agent's opening position, look prices up, and submit
		buy or sell orders against the agent's ledger.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are a disciplined crypto trader managing one simulated agent.
			Use the tools to read the agent's opening position and current
			prices before deciding anything. Buys settle at the day's open,
			sells at the day's close. Never guess holdings or prices, always
			read them. When you submit an order, report the resulting
			position back to the user verbatim.
		`}}},
		},
		Library: NewLibrary(lib),
	}
}

func fail(id, name string, err error) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID: id, Name: name,
		Response: map[string]any{"error": err.Error()},
	}
}

func ok(id, name string, v any) *genai.FunctionResponse {
	raw, err := json.Marshal(v)
	if err != nil {
		return fail(id, name, err)
	}
	return &genai.FunctionResponse{
		ID: id, Name: name,
		Response: map[string]any{"output": string(raw)},
	}
}

func (d *Desk) positions() Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Positions",
			Description: `Positions returns the session agent's opening position for
			the current trading day: the holdings settled strictly before today,
			as a symbol-to-quantity map including CASH.`,
			Parameters: &genai.Schema{Type: genai.TypeObject},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			signature, today, err := d.session()
			if err != nil {
				return fail(id, "Positions", err)
			}
			ledger, err := d.Store.Ledger(signature)
			if err != nil {
				return fail(id, "Positions", err)
			}
			return ok(id, "Positions", ledger.InitAt(today))
		},
	}
}

func (d *Desk) prices() Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Prices",
			Description: `Prices returns today's open and the most recent usable
			close for a symbol. The current day's close is embargoed until the
			day ends.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"symbol": {
						Type:        genai.TypeString,
						Description: "The symbol to quote, e.g. BTC-USDT.",
					},
				},
				Required: []string{"symbol"},
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			symbol, _ := args["symbol"].(string)
			_, today, err := d.session()
			if err != nil {
				return fail(id, "Prices", err)
			}
			quote := map[string]any{"symbol": symbol}
			if open, found := d.Archive.Open(symbol, today); found {
				quote["open"] = open.String()
			}
			if close, found := d.Archive.CloseAsOf(symbol, today); found {
				quote["last_close"] = close.String()
			}
			return ok(id, "Prices", quote)
		},
	}
}

func (d *Desk) trade() Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Trade",
			Description: `Trade submits one order for the session agent and returns
			the new position. Rejected orders come back with the rejection
			reason (insufficient cash, insufficient holdings, unknown symbol,
			invalid amount) and leave the ledger untouched.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"action": {
						Type:        genai.TypeString,
						Description: `Either "buy_crypto" or "sell_crypto".`,
					},
					"symbol": {
						Type:        genai.TypeString,
						Description: "The symbol to trade, e.g. BTC-USDT.",
					},
					"amount": {
						Type:        genai.TypeString,
						Description: "The strictly positive quantity to trade.",
					},
				},
				Required: []string{"action", "symbol", "amount"},
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			action, _ := args["action"].(string)
			symbol, _ := args["symbol"].(string)
			amount, _ := args["amount"].(string)

			signature, today, err := d.session()
			if err != nil {
				return fail(id, "Trade", err)
			}
			ins, err := arena.ParseInstruction(action, symbol, amount)
			if err != nil {
				return fail(id, "Trade", err)
			}
			snapshot, err := d.Executor.Execute(signature, today, ins)
			if err != nil {
				return fail(id, "Trade", err)
			}
			return ok(id, "Trade", snapshot.Holdings)
		},
	}
}
