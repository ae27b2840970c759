/*
Package vdf reads and writes documents in the Valve Data Format (VDF), also
known as KeyValues: a line-oriented text format of nested objects and string
scalars used by Steam and the Source engine.

https://developer.valvesoftware.com/wiki/KeyValues

The package offers two workflows:

1. Data-Oriented Decoding and Encoding

For converting VDF data to and from Go structs and maps, the Marshal and
Unmarshal functions provide an API familiar from encoding/json:

	var data = []byte(`"app"
	{
		"name"    "Half-Life"
		"appid"   "70"
	}`)

	type App struct {
		Name  string `vdf:"name"`
		AppID int    `vdf:"appid"`
	}

	var doc struct {
		App App `vdf:"app"`
	}
	if err := vdf.Unmarshal(data, &doc); err != nil {
		// handle error
	}

2. Incremental Decoding

A Decoder accepts input in arbitrarily sized chunks via Feed and builds an
ordered Object tree, so large documents never need to be held in memory as a
single string. Complete finishes the decode and returns the document:

	dec, _ := vdf.NewDecoder()
	dec.Feed(`"key" "val`)
	dec.Feed(`ue"`)
	doc, err := dec.Complete()

Documents may pull in other documents with a #base transclusion directive:

	#base "other.vdf"

Transclusion is disabled by default; enable it by configuring a Transcluder
with WithTranscluder. The named document's text is spliced into the input at
the directive's position and parsed in place.

The grammar accepted by the decoder:

	character         = %x00-%x08 / %x0B-%x1F / %x21 / %x23-%x10FFFF
	quoted-character  = character / WSP / LF
	escape-sequence   = "\" ("\" / DQUOTE / "t" / "n")
	unquoted          = *(character / escape-sequence)
	key               = unquoted 1*WSP
	value             = unquoted
	quoted-key        = DQUOTE *(quoted-character / escape-sequence) DQUOTE
	quoted-value      = DQUOTE *(quoted-character / escape-sequence) DQUOTE
	comment           = *WSP "/" *(%x00-%x09 / %x0B-%x10FFFF) 1*LF
	pair              = *WSP (key / quoted-key) *WSP (value / quoted-value) (comment / *WSP 1*LF)
	block             = (key / quoted-key) *(WSP / LF) "{" document "}" *WSP LF
	transclusion-name = quoted-key
	transclusion      = ("#base" / (DQUOTE "#base" DQUOTE)) 1*WSP transclusion-name *WSP 1*LF
	document          = *(comment / transclusion / pair / block)

Note that a comment starts at a single "/" in token-start position, per the
grammar above, and runs to the end of the line.
*/
package vdf
