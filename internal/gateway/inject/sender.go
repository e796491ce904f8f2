package inject

import (
	"errors"
	"strconv"
	"strings"
)

// ErrNoEndpoint is returned when the sender script cannot be rendered
// because no receiver endpoint URL was configured.
var ErrNoEndpoint = errors.New("sender script: receiver endpoint not configured")

const (
	isRootPlaceholder   = "__COLLAGE_IS_ROOT__"
	endpointPlaceholder = "__COLLAGE_ENDPOINT__"
)

// senderScript runs in the browser before any other module of the client
// runtime. On the root shell it lifts the document's inline import map and
// POSTs its raw text to the receiver endpoint; dependent instances only
// consume the map and never send.
const senderScript = `
(function () {
  var IS_ROOT = ` + isRootPlaceholder + `;
  var ENDPOINT = "` + endpointPlaceholder + `";
  if (!IS_ROOT) {
    return;
  }

  function currentImportMap() {
    var el = document.querySelector('script[type="importmap"]');
    if (!el || !el.textContent) {
      return null;
    }
    return el.textContent;
  }

  function send() {
    var body = currentImportMap();
    if (body === null) {
      return false;
    }
    fetch(ENDPOINT, {
      method: "POST",
      headers: { "Content-Type": "application/json" },
      body: body
    }).catch(function (err) {
      console.warn("[collage] import map send failed:", err);
    });
    return true;
  }

  if (!send()) {
    document.addEventListener("DOMContentLoaded", send, { once: true });
  }
})();
`

// RenderSender substitutes the two placeholders in the sender script: the
// is-root boolean literal and the receiver endpoint URL.
func RenderSender(isRoot bool, endpoint string) (string, error) {
	if strings.TrimSpace(endpoint) == "" {
		return "", ErrNoEndpoint
	}
	out := strings.ReplaceAll(senderScript, isRootPlaceholder, strconv.FormatBool(isRoot))
	out = strings.ReplaceAll(out, endpointPlaceholder, endpoint)
	return out, nil
}
