package sse

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseLine", func() {
	DescribeTable("classifies lines",
		func(line string, kind EventKind, data string) {
			ev := ParseLine(line)
			Expect(ev.Kind).To(Equal(kind))
			Expect(ev.Data).To(Equal(data))
		},
		Entry("blank line", "", EventIgnorable, ""),
		Entry("whitespace only", " \t ", EventIgnorable, ""),
		Entry("done sentinel", "data: [DONE]", EventStreamEnd, ""),
		Entry("done sentinel with surrounding whitespace", "  data: [DONE]\r", EventStreamEnd, ""),
		Entry("json payload", `data: {"choices":[]}`, EventData, `{"choices":[]}`),
		Entry("payload that is not json", "data: keep-alive", EventData, "keep-alive"),
		Entry("done token inside a payload", `data: {"text":"[DONE]"}`, EventData, `{"text":"[DONE]"}`),
		Entry("comment", ": ping", EventIgnorable, ""),
		Entry("event field", "event: message", EventIgnorable, ""),
		Entry("id field", "id: 42", EventIgnorable, ""),
		Entry("data without the space", "data:{}", EventIgnorable, ""),
		Entry("bare data field", "data", EventIgnorable, ""),
	)

	It("never panics on arbitrary bytes", func() {
		Expect(func() {
			ParseLine("\x00\xff data: \n")
			ParseLine("data: ")
		}).NotTo(Panic())
	})

	It("trims the line before matching the prefix", func() {
		// "data: " trims to "data:", which no longer carries the prefix.
		Expect(ParseLine("data: ").Kind).To(Equal(EventIgnorable))
		Expect(ParseLine("data:  x").Data).To(Equal(" x"))
	})
})

var _ = Describe("EventKind", func() {
	It("has readable names", func() {
		Expect(EventData.String()).To(Equal("data"))
		Expect(EventStreamEnd.String()).To(Equal("stream_end"))
		Expect(EventIgnorable.String()).To(Equal("ignorable"))
	})
})
