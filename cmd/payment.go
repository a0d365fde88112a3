package cmd

import (
	"context"
	"io"
	"math/rand"

	"github.com/frahmantamala/paysuite/pkg/paysuite"
	"github.com/spf13/cobra"
)

const referenceChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var paymentFlags paysuite.PaymentRequest

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a payment request",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := clientFromConfig()
		if err != nil {
			return err
		}
		resp, err := client.CreatePayment(cmd.Context(), paymentFlags.Payload())
		if err != nil {
			return err
		}
		return printCreated(cmd.OutOrStdout(), resp)
	},
}

var getCmd = &cobra.Command{
	Use:   "get <payment-id>",
	Short: "Show a payment request and its transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := clientFromConfig()
		if err != nil {
			return err
		}
		resp, err := client.GetPayment(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printStatus(cmd.OutOrStdout(), resp)
	},
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Create a test payment and check its status",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := clientFromConfig()
		if err != nil {
			return err
		}
		return runDemo(cmd.Context(), client, cmd.OutOrStdout())
	},
}

func clientFromConfig() (*paysuite.Client, error) {
	cfg, err := setup()
	if err != nil {
		return nil, err
	}
	return newClient(cfg)
}

// runDemo creates a small test payment, then looks it up again.
func runDemo(ctx context.Context, client *paysuite.Client, out io.Writer) error {
	fprintf(out, "\n=== PaySuite Demo ===\n")

	req := paysuite.PaymentRequest{
		Amount:      "10.00",
		Reference:   "TEST" + GenerateReference(4),
		Description: "PaySuite Go client test payment",
		ReturnURL:   "https://example.com/return",
	}

	fprintf(out, "\n1. Creating payment request...\n")
	fprintf(out, "Amount:      %s\nReference:   %s\nDescription: %s\nReturn URL:  %s\n",
		req.Amount, req.Reference, req.Description, req.ReturnURL)

	resp, err := client.CreatePayment(ctx, req.Payload())
	if err != nil {
		return err
	}
	if err := printCreated(out, resp); err != nil {
		return err
	}

	payment, err := resp.Payment()
	if err != nil {
		return err
	}

	fprintf(out, "\n2. Checking payment status...\n")
	statusResp, err := client.GetPayment(ctx, payment.ID)
	if err != nil {
		return err
	}
	if err := printStatus(out, statusResp); err != nil {
		return err
	}

	fprintf(out, "\n=== Demo Complete ===\n")
	return nil
}

func printCreated(out io.Writer, resp *paysuite.Response) error {
	if err := ensureSuccess(out, resp); err != nil {
		return err
	}
	payment, err := resp.Payment()
	if err != nil {
		return err
	}

	fprintf(out, "\n✓ Payment request created:\n")
	fprintf(out, "------------------------\n")
	fprintf(out, "Payment ID:    %s\n", payment.ID)
	fprintf(out, "Amount:        %s MZN\n", payment.Amount.StringFixed(2))
	fprintf(out, "Reference:     %s\n", payment.Reference)
	fprintf(out, "Checkout URL:  %s\n", payment.CheckoutURL)
	return nil
}

func printStatus(out io.Writer, resp *paysuite.Response) error {
	if err := ensureSuccess(out, resp); err != nil {
		return err
	}
	payment, err := resp.Payment()
	if err != nil {
		return err
	}

	fprintf(out, "\n✓ Payment status:\n")
	fprintf(out, "----------------\n")
	fprintf(out, "Payment ID:    %s\n", payment.ID)
	fprintf(out, "Status:        %s\n", payment.Status)

	if tx := payment.Transaction; tx != nil {
		fprintf(out, "\nTransaction details:\n")
		fprintf(out, "-------------------\n")
		fprintf(out, "ID:             %d\n", tx.ID)
		fprintf(out, "Status:         %s\n", tx.Status)
		fprintf(out, "Transaction ID: %s\n", tx.TransactionID)
		if tx.PaidAt != nil {
			fprintf(out, "Paid at:        %s\n", tx.PaidAt.Format("2006-01-02 15:04:05 MST"))
		}
		return nil
	}

	fprintf(out, "\nℹ No transaction details yet\n")
	if payment.CheckoutURL != "" {
		fprintf(out, "To complete payment, visit:\n%s\n", payment.CheckoutURL)
	}
	return nil
}

// ensureSuccess prints an "error" envelope and turns it into an error.
func ensureSuccess(out io.Writer, resp *paysuite.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	message, ok := resp.Message()
	if !ok {
		message = "request was not successful"
	}
	status := resp.Status()
	if status == "" {
		status = "error"
	}
	fprintf(out, "Error response:\nStatus: %s\nMessage: %s\n", status, message)
	return paysuite.NewAPIError(message, paysuite.ErrCodeHTTPStatus, 0)
}

// GenerateReference returns n random characters from A-Z and 0-9.
func GenerateReference(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = referenceChars[rand.Intn(len(referenceChars))]
	}
	return string(b)
}

func init() {
	createCmd.Flags().StringVar(&paymentFlags.Amount, "amount", "", "Amount to charge, e.g. 100.50")
	createCmd.Flags().StringVar(&paymentFlags.Reference, "reference", "", "Merchant reference")
	createCmd.Flags().StringVar(&paymentFlags.Description, "description", "", "Payment description")
	createCmd.Flags().StringVar(&paymentFlags.ReturnURL, "return-url", "", "URL the payer returns to after checkout")
}
