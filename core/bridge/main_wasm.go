//go:build js && wasm

package main

import (
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/jun/chatmark/core/emoji"
	"github.com/jun/chatmark/core/etag"
	"github.com/jun/chatmark/core/markdown"
	"github.com/jun/chatmark/core/textformat"
)

func main() {
	document := markdown.NewDocumentRenderer("")
	emojis := emoji.NewMap()

	// format: renderMarkdown(source, settingsJSON?) -> {html, etag} | "Error: ..."
	renderFunc := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) < 1 || len(args) > 2 {
			return "Error: Invalid number of arguments"
		}

		var settings textformat.Settings
		if len(args) == 2 && args[1].Type() == js.TypeString && args[1].String() != "" {
			if err := json.Unmarshal([]byte(args[1].String()), &settings); err != nil {
				return "Error: " + err.Error()
			}
		}
		opts, err := settings.Options()
		if err != nil {
			return "Error: " + err.Error()
		}

		html, err := markdown.FormatMessage(args[0].String(), opts, emojis)
		if err != nil {
			return "Error: " + err.Error()
		}
		return renderedObject(etag.NewRendered(html))
	})

	// format: renderDocument(source) -> {html, etag} | "Error: ..."
	renderDocumentFunc := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) != 1 {
			return "Error: Invalid number of arguments"
		}

		htmlBytes, err := document.Render([]byte(args[0].String()))
		if err != nil {
			return "Error: " + err.Error()
		}
		return renderedObject(etag.NewRendered(string(htmlBytes)))
	})

	// format: etagChanged(clientTag, currentTag string) -> bool
	etagChangedFunc := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) != 2 {
			return false
		}
		return etag.Changed(args[0].String(), args[1].String())
	})

	js.Global().Set("renderMarkdown", renderFunc)
	js.Global().Set("renderDocument", renderDocumentFunc)
	js.Global().Set("etagChanged", etagChangedFunc)

	fmt.Println("chatmark wasm initialized")

	// Prevent the function from returning, which would exit the Wasm module
	select {}
}

func renderedObject(r etag.Rendered) js.Value {
	obj := js.Global().Get("Object").New()
	obj.Set("html", r.HTML)
	obj.Set("etag", r.ETag)
	return obj
}
