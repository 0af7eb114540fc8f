// Package prettify turns structured log records into human-readable text.
//
// # Overview
//
// A Formatter receives one record at a time, either as a line of JSON or as
// an already-decoded record.Record, and returns the text to print:
//
//	[2019-04-07 13:15:00.000 +0000] INFO  (app/1 on host): hello
//	    req: {
//	      "id": "abc"
//	    }
//
// The first line is the header: time and level (in the order chosen by
// Options.LevelFirst), the "(name/pid on hostname)" metadata, a colon and
// the message. Any fields the header did not consume follow as indented
// "key: <json>" blocks.
//
// # Error records
//
// A record with "type" equal to "Error" and a string "stack" prints the
// stack under the header instead of the generic body. Options.ErrorProps
// then selects which other properties are printed ("*" for all of them).
//
// Keys listed in DefaultErrorLikeKeys and Options.ErrorLikeKeys hold nested
// error objects: their serialized "stack" member is expanded into plain,
// indented lines so traces stay readable.
//
// # Filtering
//
//   - Options.Search holds a JMESPath expression evaluated against the full
//     record; records for which the result is not truthy produce nothing.
//   - Options.Ignore drops keys before anything is rendered, including keys
//     the header would otherwise use.
//
// # Failure handling
//
// Formatting never fails on malformed input. Text that is not JSON is
// echoed with the configured line terminator, values without a JSON form are skipped and
// times that cannot be parsed are shown as found. Format returns
// ErrUnsupportedInput only when handed something that is neither text nor a
// record.
//
// # Building blocks
//
// Level, Message, Time and Metadata render the individual header fragments;
// Object renders the body. They are exported for callers that lay out lines
// differently.
package prettify
