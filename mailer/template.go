package mailer

import (
	"bytes"
	"html/template"
	"strconv"

	"storefront-api/models"
)

var orderEmailTmpl = template.Must(template.New("order").Funcs(template.FuncMap{
	"inr": func(v float64) string {
		return "₹" + strconv.FormatFloat(v, 'f', 2, 64)
	},
	"payment": func(method string) string {
		if method == models.PaymentMethodCOD {
			return "Cash on Delivery"
		}
		return "Prepaid Payment"
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Order Confirmation</title>
</head>
<body style="font-family: Arial, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background-color: #14b8a6; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0;">
    <h1 style="margin: 0;">Order Confirmation</h1>
  </div>
  <div style="background-color: #f9fafb; padding: 30px; border-radius: 0 0 8px 8px;">
    <p>Dear {{.CustomerName}},</p>
    <p>Thank you for your order! We've received it and will begin processing shortly.</p>

    <div style="background-color: white; padding: 20px; border-radius: 8px; margin-bottom: 20px;">
      <p style="margin: 5px 0;"><strong>Order Number:</strong> {{.OrderNumber}}</p>
      <p style="margin: 5px 0;"><strong>Order Date:</strong> {{.OrderDate}}</p>
      <p style="margin: 5px 0;"><strong>Payment Method:</strong> {{payment .PaymentMethod}}</p>
    </div>

    <div style="background-color: white; padding: 20px; border-radius: 8px; margin-bottom: 20px;">
      {{range .Items}}
      <div style="padding: 15px; border-bottom: 1px solid #e5e7eb;">
        {{if .Image}}<img src="{{.Image}}" alt="{{.Name}}" style="width: 80px; height: 80px; object-fit: cover; border-radius: 8px;" />{{end}}
        <p style="margin: 0 0 5px 0; font-weight: 600;">{{.Name}}</p>
        <p style="margin: 0; font-size: 14px; color: #6b7280;">{{if .Size}}Size: {{.Size}} × {{end}}Quantity: {{.Quantity}}</p>
        <p style="margin: 5px 0 0 0; font-weight: 600; color: #14b8a6;">{{inr .TotalPrice}}</p>
      </div>
      {{end}}
    </div>

    <div style="background-color: white; padding: 20px; border-radius: 8px; margin-bottom: 20px;">
      <h3 style="margin-top: 0; color: #14b8a6;">Shipping Address</h3>
      <p style="margin: 5px 0;">{{.ShippingAddress.Address}}</p>
      <p style="margin: 5px 0;">{{.ShippingAddress.City}}, {{.ShippingAddress.State}} {{.ShippingAddress.Pincode}}</p>
      <p style="margin: 5px 0;">{{.ShippingAddress.Country}}</p>
    </div>

    <div style="background-color: white; padding: 20px; border-radius: 8px; text-align: right;">
      <p style="margin: 5px 0;">Subtotal: {{inr .Subtotal}}</p>
      {{if gt .Tax 0.0}}<p style="margin: 5px 0;">Tax: {{inr .Tax}}</p>{{end}}
      {{if gt .ShippingCost 0.0}}<p style="margin: 5px 0;">Shipping: {{inr .ShippingCost}}</p>{{end}}
      <p style="margin: 10px 0; font-size: 18px; font-weight: bold; color: #14b8a6;">Total: {{inr .TotalAmount}}</p>
    </div>

    <p style="font-size: 14px; color: #6b7280; margin-top: 30px;">Estimated delivery: 5-7 business days. We'll send a tracking number once your order ships.</p>
  </div>
</body>
</html>
`))

func renderOrderEmail(data OrderEmailData) (string, error) {
	var buf bytes.Buffer
	if err := orderEmailTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
