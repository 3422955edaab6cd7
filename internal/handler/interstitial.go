package handler

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/service"
)

// interstitialData feeds the share interstitial template.
type interstitialData struct {
	Meta        service.ProductMetadata
	RedirectURL string
	PageURL     string
}

// renderInterstitial renders the share page: social-preview meta tags for
// crawlers plus an immediate script redirect for real visitors.
func renderInterstitial(d interstitialData) ([]byte, error) {
	var buf bytes.Buffer
	if err := interstitialTmpl.Execute(&buf, d); err != nil {
		return nil, fmt.Errorf("render interstitial: %w", err)
	}
	return buf.Bytes(), nil
}

var interstitialTmpl = template.Must(template.New("interstitial").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Meta.Title}}</title>
  <meta name="description" content="{{.Meta.Description}}">
  <meta property="og:type" content="website">
  <meta property="og:title" content="{{.Meta.Title}}">
  <meta property="og:description" content="{{.Meta.Description}}">
  <meta property="og:image" content="{{.Meta.Image}}">
  <meta property="og:url" content="{{.PageURL}}">
  <meta name="twitter:card" content="summary_large_image">
  <meta name="twitter:title" content="{{.Meta.Title}}">
  <meta name="twitter:description" content="{{.Meta.Description}}">
  <meta name="twitter:image" content="{{.Meta.Image}}">
  <link rel="canonical" href="{{.PageURL}}">
  <noscript><meta http-equiv="refresh" content="0;url={{.RedirectURL}}"></noscript>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif;
      background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
      min-height: 100vh;
      display: flex;
      align-items: center;
      justify-content: center;
      margin: 0;
      padding: 20px;
    }
    .card {
      background: white;
      border-radius: 20px;
      padding: 40px;
      max-width: 420px;
      text-align: center;
      box-shadow: 0 20px 60px rgba(0, 0, 0, 0.3);
    }
    h1 { font-size: 22px; color: #1a202c; margin: 0 0 12px; }
    p { color: #718096; font-size: 15px; line-height: 1.6; }
    a { color: #667eea; font-weight: 600; }
  </style>
</head>
<body>
  <div class="card">
    <h1>{{.Meta.Title}}</h1>
    <p>{{.Meta.Description}}</p>
    <p><a href="{{.RedirectURL}}">Continue</a></p>
  </div>
  <script>window.location.replace({{.RedirectURL}});</script>
</body>
</html>
`))
