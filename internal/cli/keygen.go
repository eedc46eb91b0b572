package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
	"quiz-engine/internal/secure"
)

// NewKeygenCmd prints a fresh quiz access key and its SHA-256 hash.
func NewKeygenCmd(configPath *string) *cobra.Command {
	var (
		length int
		secret bool
	)
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a quiz access key",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			n := length
			if n == 0 {
				n = cfg.Quiz.KeyLength
			}
			if n != 0 && (n < secure.MinKeyLength || n > secure.MaxKeyLength) {
				return fmt.Errorf("key length must be between %d and %d", secure.MinKeyLength, secure.MaxKeyLength)
			}

			key, err := secure.GenerateQuizKey(n)
			if err != nil {
				return err
			}
			hash, err := secure.HashQuizKey(key)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "key:  %s\nhash: %s\n", key, hash)

			if secret {
				raw, err := secure.GenerateSecret(secure.KeySize)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "results_key: %s\n", hex.EncodeToString(raw))
			}
			log.Debug().Int("length", len(key)).Msg("generated quiz key")
			return nil
		},
	}
	cmd.Flags().IntVar(&length, "length", 0, "key length (defaults to quiz.key_length or 16)")
	cmd.Flags().BoolVar(&secret, "secret", false, "also print a random secret for sealing results")
	return cmd
}
