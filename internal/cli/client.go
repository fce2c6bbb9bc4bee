package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/LeJamon/goAMMd/internal/core/auth"
	"github.com/LeJamon/goAMMd/internal/rpc/rpc_types"
	"github.com/spf13/cobra"
)

const defaultRPCURL = "http://127.0.0.1:5005"

var (
	// Client flags
	rpcURL     string
	privateKey string
	fee        uint64
	admin      string
	minOutput  uint64
)

// rpcClient posts JSON-RPC requests to a running ammd.
type rpcClient struct {
	url  string
	key  *auth.KeyPair
	http *http.Client
}

// newRPCClient resolves the server URL and signing key from flags, falling
// back to AMMD_RPC_URL and AMMD_KEY.
func newRPCClient() (*rpcClient, error) {
	c := &rpcClient{
		url:  firstNonEmpty(rpcURL, os.Getenv("AMMD_RPC_URL"), defaultRPCURL),
		http: &http.Client{Timeout: 30 * time.Second},
	}
	if k := firstNonEmpty(privateKey, os.Getenv("AMMD_KEY")); k != "" {
		key, err := auth.ParsePrivateKey(k)
		if err != nil {
			return nil, err
		}
		c.key = key
	}
	return c, nil
}

// call sends method and returns its result object. Signed calls require a
// key and carry the signer's current sequence unless params set one.
func (c *rpcClient) call(ctx context.Context, method string, params map[string]any, sign bool) (map[string]any, error) {
	var raw json.RawMessage
	var err error
	if sign {
		if c.key == nil {
			return nil, errors.New("a signing key is required (--key or AMMD_KEY)")
		}
		if _, ok := params[rpc_types.FieldSequence]; !ok {
			seq, err := c.sequence(ctx)
			if err != nil {
				return nil, err
			}
			params[rpc_types.FieldSequence] = seq
		}
		raw, err = rpc_types.Sign(c.key, method, params)
	} else {
		raw, err = json.Marshal(params)
	}
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(rpc_types.Request{Method: method, Params: []json.RawMessage{raw}})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %s", resp.Status)
	}

	var out struct {
		Result map[string]any `json:"result"`
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid response: %w", err)
	}
	if out.Result["status"] == "error" {
		return nil, fmt.Errorf("%v: %v", out.Result["error"], out.Result["error_message"])
	}
	delete(out.Result, "status")
	return out.Result, nil
}

// sequence fetches the signing account's next request sequence.
func (c *rpcClient) sequence(ctx context.Context) (uint64, error) {
	info, err := c.call(ctx, "account_info", map[string]any{"account": c.key.AccountID().String()}, false)
	if err != nil {
		return 0, fmt.Errorf("fetch sequence: %w", err)
	}
	n, ok := info["sequence"].(json.Number)
	if !ok {
		return 0, errors.New("fetch sequence: response has no sequence")
	}
	return strconv.ParseUint(n.String(), 10, 64)
}

// clientCommand builds a command that sends method with the params build
// returns and prints the result.
func clientCommand(use, short string, nargs int, method string, sign bool, build func(args []string) (map[string]any, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := build(args)
			if err != nil {
				return err
			}
			c, err := newRPCClient()
			if err != nil {
				return err
			}
			result, err := c.call(cmd.Context(), method, params, sign)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVar(&rpcURL, "url", "", "server URL (default $AMMD_RPC_URL or "+defaultRPCURL+")")
	if sign {
		cmd.Flags().StringVar(&privateKey, "key", "", "hex private key (default $AMMD_KEY)")
	}
	return cmd
}

func poolArgs(args []string) map[string]any {
	return map[string]any{"amm_id": args[0], "a_mint": args[1], "b_mint": args[2]}
}

func parseAmount(name, s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return v, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	createAmmCmd := clientCommand("create-amm <amm_id>", "Create an AMM", 1, "create_amm", true,
		func(args []string) (map[string]any, error) {
			params := map[string]any{"amm_id": args[0], "fee": fee}
			if admin != "" {
				params["admin"] = admin
			}
			return params, nil
		})
	createAmmCmd.Flags().Uint64Var(&fee, "fee", 0, "swap fee in basis points")
	createAmmCmd.Flags().StringVar(&admin, "admin", "", "admin account (default: the signer)")

	createPoolCmd := clientCommand("create-pool <amm_id> <a_mint> <b_mint>", "Create a pool", 3, "create_pool", true,
		func(args []string) (map[string]any, error) {
			return poolArgs(args), nil
		})

	depositCmd := clientCommand("deposit <amm_id> <a_mint> <b_mint> <amount_a> <amount_b>", "Deposit liquidity", 5, "deposit_liquidity", true,
		func(args []string) (map[string]any, error) {
			a, err := parseAmount("amount_a", args[3])
			if err != nil {
				return nil, err
			}
			b, err := parseAmount("amount_b", args[4])
			if err != nil {
				return nil, err
			}
			params := poolArgs(args)
			params["amount_a"] = a
			params["amount_b"] = b
			return params, nil
		})

	withdrawCmd := clientCommand("withdraw <amm_id> <a_mint> <b_mint> <shares>", "Withdraw liquidity", 4, "withdraw_liquidity", true,
		func(args []string) (map[string]any, error) {
			shares, err := parseAmount("shares", args[3])
			if err != nil {
				return nil, err
			}
			params := poolArgs(args)
			params["shares"] = shares
			return params, nil
		})

	swapCmd := clientCommand("swap <amm_id> <a_mint> <b_mint> <a|b> <input>", "Swap an exact input", 5, "swap_exact_input", true,
		func(args []string) (map[string]any, error) {
			input, err := parseAmount("input", args[4])
			if err != nil {
				return nil, err
			}
			params := poolArgs(args)
			params["side"] = args[3]
			params["input"] = input
			params["min_output"] = minOutput
			return params, nil
		})
	swapCmd.Flags().Uint64Var(&minOutput, "min-output", 0, "fail unless at least this much is received")

	quoteCmd := clientCommand("quote <amm_id> <a_mint> <b_mint> <a|b> <input>", "Quote a swap", 5, "quote_swap", false,
		func(args []string) (map[string]any, error) {
			input, err := parseAmount("input", args[4])
			if err != nil {
				return nil, err
			}
			params := poolArgs(args)
			params["side"] = args[3]
			params["input"] = input
			return params, nil
		})

	poolCmd := clientCommand("pool <amm_id> <a_mint> <b_mint>", "Show a pool", 3, "pool_info", false,
		func(args []string) (map[string]any, error) {
			return poolArgs(args), nil
		})

	balanceCmd := clientCommand("balance <account> <asset>", "Show an account balance", 2, "balance", false,
		func(args []string) (map[string]any, error) {
			return map[string]any{"account": args[0], "asset": args[1]}, nil
		})

	accountCmd := clientCommand("account <account>", "Show an account's next request sequence", 1, "account_info", false,
		func(args []string) (map[string]any, error) {
			return map[string]any{"account": args[0]}, nil
		})

	fundCmd := clientCommand("fund <destination> <asset> <amount>", "Credit an account (operators only)", 3, "fund", true,
		func(args []string) (map[string]any, error) {
			amount, err := parseAmount("amount", args[2])
			if err != nil {
				return nil, err
			}
			return map[string]any{"destination": args[0], "asset": args[1], "amount": amount}, nil
		})

	rootCmd.AddCommand(createAmmCmd, createPoolCmd, depositCmd, withdrawCmd, swapCmd, quoteCmd, poolCmd, balanceCmd, accountCmd, fundCmd)
}
