package chat

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMessageMarshalWireShape(t *testing.T) {
	msg := NewUserVision("what is this?", []string{"data:image/png;base64,AAAA"})
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	for _, want := range []string{
		`"role":"user"`,
		`"type":"input_text"`,
		`"text":"what is this?"`,
		`"type":"input_image"`,
		`"image_url":"data:image/png;base64,AAAA"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("marshaled message missing %s: %s", want, s)
		}
	}
	if strings.Contains(s, `"image_url":""`) {
		t.Errorf("text part should omit empty image_url: %s", s)
	}
}

func TestMessageUnmarshalRoundTrip(t *testing.T) {
	original := Message{
		Role: RoleUser,
		Content: []ContentPart{
			InputTextPart{Text: "hola"},
			InputImagePart{ImageURL: "data:image/jpeg;base64,BBBB"},
		},
	}
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Message
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Role != RoleUser {
		t.Errorf("role = %q, want user", decoded.Role)
	}
	if len(decoded.Content) != 2 {
		t.Fatalf("content parts = %d, want 2", len(decoded.Content))
	}
	if txt, ok := decoded.Content[0].(InputTextPart); !ok || txt.Text != "hola" {
		t.Errorf("part 0 = %#v, want input_text hola", decoded.Content[0])
	}
	if img, ok := decoded.Content[1].(InputImagePart); !ok || img.ImageURL != "data:image/jpeg;base64,BBBB" {
		t.Errorf("part 1 = %#v, want input_image", decoded.Content[1])
	}
}

func TestMessageUnmarshalUnknownPartType(t *testing.T) {
	raw := `{"role":"user","content":[{"type":"video","text":"x"}]}`
	var m Message
	if err := json.Unmarshal([]byte(raw), &m); err == nil {
		t.Fatal("expected error for unknown content part type")
	}
}

func TestMessageText(t *testing.T) {
	cases := []struct {
		name string
		msg  Message
		want string
	}{
		{"plain", NewUserText("hello"), "hello"},
		{"vision", NewUserVision("look", []string{"data:image/png;base64,AA"}), "look"},
		{"assistant", NewAssistantText("hi"), "hi"},
		{"empty", Message{Role: RoleUser}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.msg.Text(); got != tc.want {
				t.Errorf("Text() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMessageIsEmpty(t *testing.T) {
	if !(Message{Role: RoleUser}).IsEmpty() {
		t.Error("message with no parts should be empty")
	}
	if !(Message{Role: RoleUser, Content: []ContentPart{TextPart{}}}).IsEmpty() {
		t.Error("message with blank text should be empty")
	}
	if (NewUserText("hi")).IsEmpty() {
		t.Error("message with text should not be empty")
	}
	if (Message{Role: RoleUser, Content: []ContentPart{InputImagePart{ImageURL: "data:image/png;base64,AA"}}}).IsEmpty() {
		t.Error("message with an image should not be empty")
	}
}

func TestImages(t *testing.T) {
	msg := NewUserVision("two", []string{"u1", "u2"})
	imgs := msg.Images()
	if len(imgs) != 2 || imgs[0] != "u1" || imgs[1] != "u2" {
		t.Errorf("Images() = %v, want [u1 u2]", imgs)
	}
}
