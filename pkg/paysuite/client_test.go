package paysuite_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/paysuite/pkg/logger"
	"github.com/frahmantamala/paysuite/pkg/paysuite"
)

const createdBody = `{
	"status": "success",
	"data": {
		"id": "550e8400-e29b-41d4-a716-446655440000",
		"amount": 100.50,
		"reference": "TEST1234",
		"status": "pending",
		"checkout_url": "https://paysuite.tech/checkout/550e8400-e29b-41d4-a716-446655440000"
	}
}`

var _ = Describe("Client", func() {
	var (
		ctx       context.Context
		transport *recordingTransport
		client    *paysuite.Client
	)

	BeforeEach(func() {
		ctx = context.Background()
		transport = &recordingTransport{body: createdBody}

		var err error
		client, err = paysuite.NewClient(testToken,
			paysuite.WithTransport(transport),
			paysuite.WithLogger(quietLogger()))
		Expect(err).ToNot(HaveOccurred())
	})

	Describe("NewClient", func() {
		It("should keep the token", func() {
			Expect(client.Token()).To(Equal(testToken))
			Expect(client.BaseURL()).To(Equal(paysuite.DefaultBaseURL))
		})

		DescribeTable("should reject blank tokens",
			func(token string) {
				c, err := paysuite.NewClient(token)

				Expect(c).To(BeNil())
				Expect(err).To(MatchError("Token cannot be empty"))
				Expect(paysuite.IsInvalidArgument(err)).To(BeTrue())
				Expect(paysuite.IsValidationError(err)).To(BeFalse())
			},
			Entry("empty", ""),
			Entry("spaces", "   "),
			Entry("tabs and newlines", "\t\n "),
		)

		It("should store the token trimmed", func() {
			c, err := paysuite.NewClient("  abc  ", paysuite.WithTransport(transport))

			Expect(err).ToNot(HaveOccurred())
			Expect(c.Token()).To(Equal("abc"))
		})

		It("should drop a trailing slash from the base URL", func() {
			c, err := paysuite.NewClient(testToken,
				paysuite.WithBaseURL("http://localhost:8080/api/v1/"),
				paysuite.WithTransport(transport),
				paysuite.WithLogger(quietLogger()))
			Expect(err).ToNot(HaveOccurred())

			_, err = c.GetPayment(ctx, testPaymentID)

			Expect(err).ToNot(HaveOccurred())
			Expect(transport.last().URL).To(Equal("http://localhost:8080/api/v1/payments/" + testPaymentID))
		})
	})

	Describe("SetToken", func() {
		It("should replace the token used in later requests", func() {
			Expect(client.SetToken("new-token")).To(Succeed())

			_, err := client.GetPayment(ctx, testPaymentID)

			Expect(err).ToNot(HaveOccurred())
			Expect(client.Token()).To(Equal("new-token"))
			Expect(transport.last().Header.Get("Authorization")).To(Equal("Bearer new-token"))
		})

		It("should reject a blank token and keep the old one", func() {
			err := client.SetToken("  ")

			Expect(paysuite.IsInvalidArgument(err)).To(BeTrue())
			Expect(client.Token()).To(Equal(testToken))
		})
	})

	Describe("CreatePayment", func() {
		Context("when the payload is valid", func() {
			It("should POST it to /payments with auth headers", func() {
				resp, err := client.CreatePayment(ctx, validPayload())

				Expect(err).ToNot(HaveOccurred())
				Expect(resp.IsSuccess()).To(BeTrue())

				req := transport.last()
				Expect(req.Method).To(Equal(http.MethodPost))
				Expect(req.URL).To(Equal(paysuite.DefaultBaseURL + "/payments"))
				Expect(req.Header.Get("Authorization")).To(Equal("Bearer " + testToken))
				Expect(req.Header.Get("Content-Type")).To(Equal("application/json"))
				Expect(req.Header.Get("Accept")).To(Equal("application/json"))

				var sent map[string]interface{}
				Expect(json.Unmarshal(req.Body, &sent)).To(Succeed())
				Expect(sent).To(Equal(map[string]interface{}{
					"amount":      "100.50",
					"reference":   "TEST1234",
					"description": "Test Payment",
					"return_url":  "https://example.com/return",
				}))
			})

			It("should forward extra fields untouched", func() {
				data := validPayload()
				data["method"] = "mpesa"

				_, err := client.CreatePayment(ctx, data)

				Expect(err).ToNot(HaveOccurred())
				Expect(string(transport.last().Body)).To(ContainSubstring(`"method":"mpesa"`))
			})

			It("should expose the created payment", func() {
				resp, err := client.CreatePayment(ctx, validPayload())
				Expect(err).ToNot(HaveOccurred())

				ref, ok := resp.Reference()
				Expect(ok).To(BeTrue())
				Expect(ref).To(Equal("TEST1234"))

				checkout, ok := resp.CheckoutURL()
				Expect(ok).To(BeTrue())
				Expect(checkout).To(HavePrefix("https://"))
				Expect(resp.Data()).To(HaveKey("id"))
			})

			It("should accept the typed request", func() {
				req := paysuite.PaymentRequest{
					Amount:      "10.00",
					Reference:   "INV1",
					Description: "Order",
					ReturnURL:   "https://example.com/return",
				}
				Expect(req.Validate()).To(Succeed())

				_, err := client.CreatePayment(ctx, req.Payload())

				Expect(err).ToNot(HaveOccurred())
				Expect(transport.calls()).To(Equal(1))
			})
		})

		Context("when a required field is missing or empty", func() {
			for _, field := range paysuite.RequiredPaymentFields {
				field := field

				It("should name "+field+" when it is absent", func() {
					data := validPayload()
					delete(data, field)

					_, err := client.CreatePayment(ctx, data)

					Expect(err).To(MatchError("Missing required field: " + field))
					Expect(paysuite.IsValidationError(err)).To(BeTrue())
					Expect(transport.calls()).To(BeZero())
				})

				It("should name "+field+" when it is empty", func() {
					data := validPayload()
					data[field] = ""

					_, err := client.CreatePayment(ctx, data)

					Expect(err).To(MatchError("Missing required field: " + field))
					Expect(transport.calls()).To(BeZero())
				})
			}

			It("should report a missing field before an invalid amount", func() {
				data := validPayload()
				data["amount"] = "-100"
				delete(data, "reference")

				_, err := client.CreatePayment(ctx, data)

				Expect(err).To(MatchError("Missing required field: reference"))
			})
		})

		DescribeTable("amount rules",
			func(amount interface{}, expected string) {
				data := validPayload()
				data["amount"] = amount

				_, err := client.CreatePayment(ctx, data)

				if expected == "" {
					Expect(err).ToNot(HaveOccurred())
					Expect(transport.calls()).To(Equal(1))
					return
				}
				Expect(err).To(MatchError(expected))
				Expect(paysuite.IsValidationError(err)).To(BeTrue())
				Expect(transport.calls()).To(BeZero())
			},
			Entry(`"0" counts as missing`, "0", "Missing required field: amount"),
			Entry("numeric zero counts as missing", 0, "Missing required field: amount"),
			Entry(`"0.00" is not positive`, "0.00", "Amount must be a positive number"),
			Entry(`"-100" is not positive`, "-100", "Amount must be a positive number"),
			Entry("text is not numeric", "abc", "Amount must be a positive number"),
			Entry("a boolean is not numeric", true, "Amount must be a positive number"),
			Entry(`"10.00" passes`, "10.00", ""),
			Entry("padded decimal passes", " 12.5 ", ""),
			Entry("float passes", 100.5, ""),
			Entry("int passes", 250, ""),
		)

		DescribeTable("return_url rules",
			func(returnURL interface{}, valid bool) {
				data := validPayload()
				data["return_url"] = returnURL

				_, err := client.CreatePayment(ctx, data)

				if valid {
					Expect(err).ToNot(HaveOccurred())
					return
				}
				Expect(err).To(MatchError("Invalid return URL"))
				Expect(transport.calls()).To(BeZero())
			},
			Entry("plain text", "invalid-url", false),
			Entry("path only", "/return", false),
			Entry("scheme without host", "https://", false),
			Entry("contains spaces", "https://example.com/a b", false),
			Entry("not a string", 42, false),
			Entry("port out of range", "https://example.com:99999/x", false),
			Entry("underscore in host", "https://exa_mple.com", false),
			Entry("https URL", "https://example.com/return", true),
			Entry("http URL with port and query", "http://localhost:3000/done?order=1", true),
		)

		Context("when the transport fails", func() {
			It("should return API errors unchanged", func() {
				transport.err = paysuite.NewAPIError("Unauthenticated.", paysuite.ErrCodeHTTPStatus, http.StatusUnauthorized)

				resp, err := client.CreatePayment(ctx, validPayload())

				Expect(resp).To(BeNil())
				appErr, ok := paysuite.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Message).To(Equal("Unauthenticated."))
				Expect(appErr.StatusCode).To(Equal(http.StatusUnauthorized))
			})

			It("should wrap plain errors as transport errors", func() {
				transport.err = errors.New("connection reset")

				_, err := client.CreatePayment(ctx, validPayload())

				Expect(err).To(MatchError("Transport error: connection reset"))
				Expect(paysuite.IsAPIError(err)).To(BeTrue())
				Expect(errors.Unwrap(err)).To(MatchError("connection reset"))
			})

			DescribeTable("should reject a body that is empty or falsy",
				func(body string) {
					transport.body = body

					_, err := client.CreatePayment(ctx, validPayload())

					Expect(err).To(MatchError("Empty response from server"))
					Expect(paysuite.IsAPIError(err)).To(BeTrue())
				},
				Entry("empty", ""),
				Entry("whitespace", " \n"),
				Entry("bare zero", "0"),
			)

			It("should reject a malformed body", func() {
				transport.body = "<html>oops</html>"

				_, err := client.CreatePayment(ctx, validPayload())

				appErr, ok := paysuite.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(paysuite.ErrCodeMalformedResponse))
			})
		})

		It("should not treat an error envelope as a Go error", func() {
			transport.body = `{"status":"error","message":"Reference already used"}`

			resp, err := client.CreatePayment(ctx, validPayload())

			Expect(err).ToNot(HaveOccurred())
			Expect(resp.IsSuccess()).To(BeFalse())
			message, ok := resp.Message()
			Expect(ok).To(BeTrue())
			Expect(message).To(Equal("Reference already used"))
		})
	})

	Describe("GetPayment", func() {
		It("should GET /payments/{id} without a body", func() {
			_, err := client.GetPayment(ctx, testPaymentID)

			Expect(err).ToNot(HaveOccurred())
			req := transport.last()
			Expect(req.Method).To(Equal(http.MethodGet))
			Expect(req.URL).To(Equal(paysuite.DefaultBaseURL + "/payments/" + testPaymentID))
			Expect(req.Body).To(BeNil())
			Expect(req.Header.Get("Authorization")).To(Equal("Bearer " + testToken))
			Expect(req.Header.Get("Accept")).To(Equal("application/json"))
		})

		DescribeTable("should reject ids that are not UUID v4",
			func(id string) {
				_, err := client.GetPayment(ctx, id)

				Expect(err).To(MatchError("Invalid UUID format"))
				Expect(paysuite.IsValidationError(err)).To(BeTrue())
				Expect(transport.calls()).To(BeZero())
			},
			Entry("empty", ""),
			Entry("free text", "invalid-uuid"),
			Entry("truncated", "550e8400-e29b-41d4-a716"),
			Entry("version 1", "550e8400-e29b-11d4-a716-446655440000"),
			Entry("wrong variant", "550e8400-e29b-41d4-c716-446655440000"),
			Entry("braced", "{550e8400-e29b-41d4-a716-446655440000}"),
			Entry("no hyphens", "550e8400e29b41d4a716446655440000"),
			Entry("urn form", "urn:uuid:550e8400-e29b-41d4-a716-446655440000"),
		)

		It("should accept upper-case ids", func() {
			_, err := client.GetPayment(ctx, "550E8400-E29B-41D4-A716-446655440000")

			Expect(err).ToNot(HaveOccurred())
		})

		It("should decode the nested transaction", func() {
			transport.body = `{
				"status": "success",
				"data": {
					"id": "550e8400-e29b-41d4-a716-446655440000",
					"amount": 100.50,
					"reference": "TEST1234",
					"status": "paid",
					"transaction": {
						"id": 1,
						"status": "completed",
						"transaction_id": "MPESA123456",
						"paid_at": "2024-02-10T10:15:00.000000Z"
					}
				}
			}`

			resp, err := client.GetPayment(ctx, testPaymentID)
			Expect(err).ToNot(HaveOccurred())

			payment, err := resp.Payment()
			Expect(err).ToNot(HaveOccurred())
			Expect(payment.ID).To(Equal(testPaymentID))
			Expect(payment.Status).To(Equal(paysuite.PaymentStatusPaid))
			Expect(payment.IsPaid()).To(BeTrue())
			Expect(payment.Transaction).ToNot(BeNil())
			Expect(payment.Transaction.ID).To(Equal(int64(1)))
			Expect(payment.Transaction.TransactionID).To(Equal("MPESA123456"))
			Expect(payment.Transaction.PaidAt.Year()).To(Equal(2024))
		})
	})

	Describe("logging", func() {
		It("should prefer the logger carried by the context", func() {
			buf := &safeBuffer{}
			ctxLogger := logger.InitWithWriter(buf, "debug", "json")
			ctx = logger.With(ctx, "trace_id", "abc")

			_, err := client.GetPayment(ctx, testPaymentID)

			Expect(err).ToNot(HaveOccurred())
			Expect(ctxLogger).ToNot(BeNil())
			Expect(buf.String()).To(ContainSubstring(`"trace_id":"abc"`))
			Expect(buf.String()).To(ContainSubstring("paysuite: payment request retrieved"))
			Expect(buf.String()).ToNot(ContainSubstring(testToken))
		})
	})
})
