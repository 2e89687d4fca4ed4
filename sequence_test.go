// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls_test

import (
	"reflect"
	"testing"

	"code.hybscloud.com/starttls"
)

func TestIMAPScript(t *testing.T) {
	seq := starttls.NewProvider("imap.example.com", starttls.DefaultIMAPPort).IMAP()

	want := []starttls.Effect{
		starttls.Connect{Host: "imap.example.com", Port: 143},
		starttls.DiscardLine{},
		starttls.WriteLine{Payload: "A1 STARTTLS\r\n"},
		starttls.DiscardLine{},
		starttls.Upgrade{Host: "imap.example.com"},
		starttls.WriteLine{Payload: "A2 CAPABILITY\r\n"},
		starttls.ReadLine{},
		starttls.Disconnect{},
	}
	if got := seq.Effects(); !reflect.DeepEqual(got, want) {
		t.Fatalf("IMAP effects\n got %v\nwant %v", got, want)
	}
}

func TestSMTPScript(t *testing.T) {
	seq := starttls.NewProvider("mx.example.com", 587).SMTP("client.example.com")

	want := []starttls.Effect{
		starttls.Connect{Host: "mx.example.com", Port: 587},
		starttls.DiscardLine{},
		starttls.WriteLine{Payload: "HELO client.example.com\r\n"},
		starttls.DiscardLine{},
		starttls.WriteLine{Payload: "STARTTLS\r\n"},
		starttls.DiscardLine{},
		starttls.Upgrade{Host: "mx.example.com"},
		starttls.WriteLine{Payload: "NOOP\r\n"},
		starttls.DiscardLine{},
		starttls.Disconnect{},
	}
	if got := seq.Effects(); !reflect.DeepEqual(got, want) {
		t.Fatalf("SMTP effects\n got %v\nwant %v", got, want)
	}
}

func TestSequenceFIFO(t *testing.T) {
	seq := starttls.NewSequence()
	seq.Connect("h", 1)
	seq.WriteLine("one")
	seq.ReadLine()
	seq.DiscardLine()
	seq.Disconnect()

	want := []starttls.Kind{
		starttls.KindConnect,
		starttls.KindWriteLine,
		starttls.KindReadLine,
		starttls.KindDiscardLine,
		starttls.KindDisconnect,
	}
	var got []starttls.Kind
	for {
		e, ok := seq.Next()
		if !ok {
			break
		}
		got = append(got, e.Kind())
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("kinds got %v, want %v", got, want)
	}
	if seq.Len() != 0 {
		t.Fatalf("Len got %d, want 0", seq.Len())
	}
}

func TestSequenceExhaustedYieldsNothing(t *testing.T) {
	seq := starttls.NewProvider("h", 143).IMAP()
	n := 0
	for range seq.All() {
		n++
	}
	if n != 8 {
		t.Fatalf("first pass got %d effects, want 8", n)
	}
	for range seq.All() {
		t.Fatal("exhausted sequence yielded an effect")
	}
	if e, ok := seq.Next(); ok || e != nil {
		t.Fatalf("Next after exhaustion got (%v, %v), want (nil, false)", e, ok)
	}
}

func TestSequenceEffectsDoesNotConsume(t *testing.T) {
	seq := starttls.NewProvider("h", 25).SMTP("me")
	before := seq.Len()
	_ = seq.Effects()
	if seq.Len() != before {
		t.Fatalf("Len changed from %d to %d", before, seq.Len())
	}
	seq.Next()
	if got := len(seq.Effects()); got != before-1 {
		t.Fatalf("remaining got %d, want %d", got, before-1)
	}
}

func TestSequenceWriteLineAppendsCRLF(t *testing.T) {
	seq := starttls.NewSequence()
	seq.WriteLine("A1 STARTTLS")
	e, _ := seq.Next()
	w, ok := e.(starttls.WriteLine)
	if !ok {
		t.Fatalf("expected WriteLine, got %T", e)
	}
	if w.Payload != "A1 STARTTLS\r\n" {
		t.Fatalf("payload got %q, want %q", w.Payload, "A1 STARTTLS\r\n")
	}
}

func TestSequenceDoubleConnectEmitsOne(t *testing.T) {
	seq := starttls.NewSequence()
	seq.Connect("h", 143)
	seq.Connect("h", 143)
	if got := kindsOf(seq.Effects()); !reflect.DeepEqual(got, []starttls.Kind{starttls.KindConnect}) {
		t.Fatalf("kinds got %v, want one connect", got)
	}
}

func TestSequenceDoubleDisconnectEmitsOne(t *testing.T) {
	seq := starttls.NewSequence()
	seq.Connect("h", 143)
	seq.Disconnect()
	seq.Disconnect()
	want := []starttls.Kind{starttls.KindConnect, starttls.KindDisconnect}
	if got := kindsOf(seq.Effects()); !reflect.DeepEqual(got, want) {
		t.Fatalf("kinds got %v, want %v", got, want)
	}
}

func TestSequenceDisconnectBeforeConnectIgnored(t *testing.T) {
	seq := starttls.NewSequence()
	seq.Disconnect()
	if seq.Len() != 0 {
		t.Fatalf("Len got %d, want 0", seq.Len())
	}
}

func TestSequenceReconnectAfterDisconnect(t *testing.T) {
	seq := starttls.NewSequence()
	seq.Connect("a", 1)
	seq.Disconnect()
	seq.Connect("b", 2)
	seq.Disconnect()
	want := []starttls.Kind{
		starttls.KindConnect, starttls.KindDisconnect,
		starttls.KindConnect, starttls.KindDisconnect,
	}
	if got := kindsOf(seq.Effects()); !reflect.DeepEqual(got, want) {
		t.Fatalf("kinds got %v, want %v", got, want)
	}
}

func TestSequenceOf(t *testing.T) {
	effects := []starttls.Effect{starttls.Disconnect{}, starttls.Disconnect{}}
	seq := starttls.SequenceOf(effects...)
	effects[0] = starttls.ReadLine{}
	if got := kindsOf(seq.Effects()); !reflect.DeepEqual(got, []starttls.Kind{starttls.KindDisconnect, starttls.KindDisconnect}) {
		t.Fatalf("SequenceOf must copy and skip the guard, got %v", got)
	}
}

func TestEffectStrings(t *testing.T) {
	cases := []struct {
		e    starttls.Effect
		want string
	}{
		{starttls.Connect{Host: "h", Port: 143}, "Connect(h, 143)"},
		{starttls.Upgrade{Host: "h"}, "Upgrade(h)"},
		{starttls.DiscardLine{}, "DiscardLine"},
		{starttls.ReadLine{}, "ReadLine"},
		{starttls.WriteLine{Payload: "NOOP\r\n"}, `WriteLine("NOOP\r\n")`},
		{starttls.Disconnect{}, "Disconnect"},
	}
	for _, c := range cases {
		if got := c.e.String(); got != c.want {
			t.Errorf("String got %q, want %q", got, c.want)
		}
	}
	if got := starttls.KindUpgrade.String(); got != "upgrade" {
		t.Errorf("Kind.String got %q, want %q", got, "upgrade")
	}
	if got := starttls.Kind(99).String(); got != "kind(99)" {
		t.Errorf("Kind.String got %q, want %q", got, "kind(99)")
	}
}
