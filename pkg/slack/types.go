package slack

// Message is an incoming-webhook payload: fallback text plus optional
// layout blocks.
type Message struct {
	Text   string  `json:"text"`
	Blocks []Block `json:"blocks,omitempty"`
}

// Block is a single layout block.
type Block struct {
	Type string     `json:"type"`
	Text *BlockText `json:"text,omitempty"`
}

// BlockText is the text object inside a section block.
type BlockText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SectionMessage builds a message whose body is one markdown section
// block mirroring the fallback text.
func SectionMessage(text string) Message {
	return Message{
		Text: text,
		Blocks: []Block{
			{
				Type: "section",
				Text: &BlockText{Type: "mrkdwn", Text: text},
			},
		},
	}
}
