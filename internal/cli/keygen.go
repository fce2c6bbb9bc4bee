package cli

import (
	"encoding/hex"
	"encoding/json"

	"github.com/LeJamon/goAMMd/internal/core/auth"
	"github.com/spf13/cobra"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a signing key",
	Long: `Generate a new secp256k1 key pair and print it with the account ID it
controls. Pass the private key to client commands with --key or AMMD_KEY.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := auth.GenerateKeyPair()
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]string{
			"account":     key.AccountID().String(),
			"public_key":  hex.EncodeToString(key.PublicKey()),
			"private_key": key.PrivateKeyHex(),
		})
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}
