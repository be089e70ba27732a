// Package template renders the two standard "payment required" response
// bodies and classifies inbound requests as browser or API clients. All
// functions are pure: no I/O, deterministic output for identical input.
package template

import (
	htmltemplate "html/template"
	"strings"

	"github.com/paygate-labs/x402-verify-go/types"
)

// DefaultHTMLError is shown on the paywall when no error text is given.
const DefaultHTMLError = "Payment required"

// paywallTemplate is the HTML paywall. Every interpolation goes through
// html/template's contextual escaping, so caller-controlled description
// and error strings cannot alter the surrounding markup.
var paywallTemplate = htmltemplate.Must(htmltemplate.New("paywall").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Payment Required</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; background: #f5f5f5; margin: 0; padding: 2rem; }
.paywall { max-width: 32rem; margin: 4rem auto; background: #fff; border-radius: 8px; padding: 2rem; box-shadow: 0 1px 4px rgba(0,0,0,0.1); }
h1 { font-size: 1.4rem; margin-top: 0; }
.error { color: #b00020; margin-bottom: 1rem; }
.option { border-top: 1px solid #eee; padding: 1rem 0; }
.amount { font-size: 1.2rem; font-weight: 600; }
dl { margin: 0.5rem 0 0; }
dt { color: #666; font-size: 0.8rem; text-transform: uppercase; }
dd { margin: 0 0 0.5rem; font-family: ui-monospace, monospace; font-size: 0.9rem; word-break: break-all; }
</style>
</head>
<body>
<div class="paywall">
<h1>Payment Required</h1>
<p class="error">{{.Error}}</p>
{{range .Options}}<div class="option">
<div class="amount">{{.Amount}} USDC</div>
<dl>
<dt>Network</dt><dd>{{.Network}}</dd>
<dt>Pay to</dt><dd>{{.PayTo}}</dd>
<dt>Resource</dt><dd>{{.Resource}}</dd>
<dt>Description</dt><dd>{{.Description}}</dd>
</dl>
</div>
{{end}}<p>Send the X-PAYMENT header with a signed payment authorization to access this resource.</p>
</div>
</body>
</html>
`))

// paywallData is the template input.
type paywallData struct {
	Error   string
	Options []paywallOption
}

type paywallOption struct {
	Amount      string
	Network     types.Network
	PayTo       string
	Resource    string
	Description string
}

// RenderHTML renders the paywall page for the given payment options,
// embedding errorMessage when non-empty.
func RenderHTML(requirements []types.PaymentRequirements, errorMessage string) string {
	if errorMessage == "" {
		errorMessage = DefaultHTMLError
	}

	data := paywallData{Error: errorMessage}
	for _, req := range requirements {
		data.Options = append(data.Options, paywallOption{
			Amount:      displayAmount(req),
			Network:     req.Network,
			PayTo:       req.PayTo,
			Resource:    req.Resource,
			Description: req.Description,
		})
	}

	var out strings.Builder
	// Execution over a plain struct cannot fail; the template has no
	// functions or invalid field references.
	_ = paywallTemplate.Execute(&out, data)
	return out.String()
}

// displayAmount renders maxAmountRequired in whole asset units. Falls
// back to the raw base-unit string if the amount does not parse, rather
// than hiding the requirement.
func displayAmount(req types.PaymentRequirements) string {
	decimals := int32(6)
	if info, ok := req.Network.Info(); ok {
		decimals = info.AssetDecimals
	}
	amount, err := types.AmountInAssetUnits(req.MaxAmountRequired, decimals)
	if err != nil {
		return req.MaxAmountRequired
	}
	return amount
}
