package probe

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/deeplink"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/domain"
)

// PageParams carries everything the probe page needs to run the sequence on
// the client.
type PageParams struct {
	Platform   domain.Platform
	Links      deeplink.Links
	StoreURL   string
	ResourceID string
}

// pageData is PageParams plus the timing constants, flattened for the
// template.
type pageData struct {
	PageParams
	PaintDelayMS         int64
	SchemeRetryDelayMS   int64
	StoreFallbackDelayMS int64
	FallbackCeilingMS    int64
}

// RenderPage renders the probe page. The embedded script executes the same
// sequence Machine models, with the same timing constants.
func RenderPage(p PageParams) ([]byte, error) {
	data := pageData{
		PageParams:           p,
		PaintDelayMS:         PaintDelay.Milliseconds(),
		SchemeRetryDelayMS:   SchemeRetryDelay.Milliseconds(),
		StoreFallbackDelayMS: StoreFallbackDelay.Milliseconds(),
		FallbackCeilingMS:    FallbackCeiling.Milliseconds(),
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render probe page: %w", err)
	}
	return buf.Bytes(), nil
}

var pageTmpl = template.Must(template.New("probe").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Opening app…</title>
  <style>
    * { margin: 0; padding: 0; box-sizing: border-box; }
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif;
      background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
      min-height: 100vh;
      display: flex;
      align-items: center;
      justify-content: center;
      padding: 20px;
    }
    .container {
      background: white;
      border-radius: 20px;
      padding: 40px;
      max-width: 420px;
      width: 100%;
      box-shadow: 0 20px 60px rgba(0, 0, 0, 0.3);
      text-align: center;
    }
    h1 { font-size: 24px; color: #1a202c; margin-bottom: 12px; }
    p { color: #718096; font-size: 16px; line-height: 1.6; margin-bottom: 32px; }
    .spinner {
      margin: 24px auto;
      width: 50px;
      height: 50px;
      border: 4px solid #e2e8f0;
      border-top-color: #667eea;
      border-radius: 50%;
      animation: spin 1s linear infinite;
    }
    @keyframes spin { to { transform: rotate(360deg); } }
    button {
      background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
      color: white;
      border: none;
      padding: 16px 32px;
      border-radius: 12px;
      font-size: 16px;
      font-weight: 600;
      cursor: pointer;
      width: 100%;
    }
    .info {
      margin-top: 24px;
      padding-top: 24px;
      border-top: 1px solid #e2e8f0;
      font-size: 14px;
      color: #a0aec0;
    }
  </style>
</head>
<body>
  <div class="container">
    <h1>Opening the app…</h1>
    <p>If the app does not open automatically, you will be taken to the store to install it.</p>
    <div class="spinner"></div>
    <button id="openAppBtn">Open the app now</button>
    {{if .ResourceID}}
    <div class="info">Product: #{{.ResourceID}}</div>
    {{end}}
  </div>
  <script>
    (function () {
      var platform = "{{.Platform}}";
      var customScheme = "{{.Links.CustomScheme}}";
      var androidIntent = "{{.Links.AndroidIntent}}";
      var universalLink = "{{.Links.UniversalLink}}";
      var storeUrl = "{{.StoreURL}}";

      var opened = false;
      var startTime = 0;

      document.addEventListener('visibilitychange', function () {
        if (document.hidden) {
          opened = true;
        }
      });

      function fallbackToStore() {
        var elapsed = Date.now() - startTime;
        if (opened || elapsed < 0 || elapsed >= {{.FallbackCeilingMS}}) {
          return;
        }
        window.location = storeUrl;
      }

      function attempt() {
        startTime = Date.now();
        opened = false;

        if (platform === 'android') {
          window.location = androidIntent;
        } else if (platform === 'ios') {
          window.location = universalLink;
          setTimeout(function () {
            if (!opened) {
              window.location = customScheme;
            }
          }, {{.SchemeRetryDelayMS}});
        } else {
          window.location = customScheme;
        }

        setTimeout(fallbackToStore, {{.StoreFallbackDelayMS}});
      }

      setTimeout(attempt, {{.PaintDelayMS}});

      var btn = document.getElementById('openAppBtn');
      if (btn) {
        btn.addEventListener('click', attempt);
      }
    })();
  </script>
</body>
</html>
`))
