package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"dntl-dsa/dntl"
	"dntl-dsa/dntl/keys"
	"dntl-dsa/measure"
	"dntl-dsa/measureutil"
	"dntl-dsa/prof"
	"dntl-dsa/sparse"
)

func presetByName(name string) (*dntl.ParameterSet, error) {
	switch name {
	case "signed-64":
		return dntl.PresetSigned64()
	case "signed-64-s24":
		return dntl.PresetSigned64Seed24()
	case "signed-128":
		return dntl.PresetSigned128()
	case "natural-64":
		return dntl.PresetNatural64()
	case "natural-128":
		return dntl.PresetNatural128()
	case "natural-256":
		return dntl.PresetNatural256()
	}
	return nil, fmt.Errorf("unknown preset %q", name)
}

func main() {
	preset := flag.String("preset", "natural-64", "parameter set: signed-64|signed-64-s24|signed-128|natural-64|natural-128|natural-256")
	rounds := flag.Int("rounds", 1, "number of sign/verify rounds")
	msgHex := flag.String("msg", "", "message hex (default: per-round generated message)")
	outdir := flag.String("outdir", "dntl_keys", "directory for key and signature bundles")
	withMeasure := flag.Bool("measure", false, "collect byte-size counters and signature entropy")
	flag.Parse()

	ps, err := presetByName(*preset)
	if err != nil {
		log.Fatal(err)
	}
	if *withMeasure {
		measure.Enabled = true
	}
	keys.Dir = *outdir

	scheme, err := dntl.NewScheme(ps)
	if err != nil {
		log.Fatalf("scheme: %v", err)
	}

	kgStart := time.Now()
	kp, err := scheme.GenerateKeyPair()
	if err != nil {
		log.Fatalf("keygen: %v", err)
	}
	prof.Track(kgStart, "keygen")

	pub := &keys.PublicKey{
		Version:    "dntl-public-v1",
		N:          ps.N,
		K:          ps.K,
		Q:          ps.Q,
		Convention: ps.Convention.String(),
		PKC:        keys.EncodeSeed(kp.PKC),
		PKCoeffs:   kp.Public.Coeffs(),
	}
	if err := keys.SavePublic(pub); err != nil {
		log.Fatalf("save public: %v", err)
	}
	priv := &keys.PrivateKey{Version: "dntl-private-v1", N: ps.N, Q: ps.Q, Secret: kp.Secret}
	if err := keys.SavePrivate(priv); err != nil {
		log.Fatalf("save private: %v", err)
	}
	log.Printf("[dntl] keygen done: preset=%s N=%d K=%d Q=%d", ps.Name, ps.N, ps.K, ps.Q)

	var okCount int
	for i := 0; i < *rounds; i++ {
		var msg []byte
		if *msgHex != "" {
			if msg, err = hex.DecodeString(*msgHex); err != nil {
				log.Fatalf("msg hex: %v", err)
			}
		} else {
			msg = []byte(fmt.Sprintf("dntl-round-%d", i))
		}

		sStart := time.Now()
		sig, err := scheme.Sign(msg, kp)
		if err != nil {
			log.Fatalf("sign round %d: %v", i, err)
		}
		prof.Track(sStart, "sign")

		vStart := time.Now()
		ok, err := scheme.Verify(msg, kp.PKC, kp.Public, sig)
		if err != nil {
			log.Fatalf("verify round %d: %v", i, err)
		}
		prof.Track(vStart, "verify")
		if ok {
			okCount++
		} else {
			log.Printf("warn: round %d signature rejected", i)
		}

		wire, err := keys.SignatureWire(sig.Sig.Coeffs(), sig.U)
		if err != nil {
			log.Fatalf("wire encode: %v", err)
		}
		if measure.Enabled {
			measure.Global.Add("dntl/signature/wire", int64(len(wire)))
		}

		if i == *rounds-1 {
			bundle := keys.NewSignature()
			bundle.Params.N = ps.N
			bundle.Params.K = ps.K
			bundle.Params.Q = ps.Q
			bundle.Params.Convention = ps.Convention.String()
			bundle.Message.Hex = hex.EncodeToString(msg)
			bundle.Signature.U = keys.EncodeSeed(sig.U)
			bundle.Signature.SigCoeffs = sig.Sig.Coeffs()
			bundle.Signature.TrialsUsed = 1
			if err := keys.Save(bundle); err != nil {
				log.Fatalf("save signature: %v", err)
			}
		}

		if measure.Enabled {
			vec := make([]float64, sig.Sig.Len())
			for j, c := range sig.Sig.Coeffs() {
				vec[j] = float64(c)
			}
			stats := sparse.Analyze(vec, sparse.DefaultThreshold)
			log.Printf("[dntl] round %d: wire=%dB entropy=%.4f nonzero=%d/%d format=%s",
				i, len(wire), measure.BitEntropy(sig.Sig.Coeffs()), stats.NonZeroCount, sig.Sig.Len(), sparse.Recommend(vec))
		}
	}

	log.Printf("[dntl] %d/%d rounds verified", okCount, *rounds)

	for label, s := range prof.Summarize(prof.SnapshotAndReset()) {
		avg := s.Total / time.Duration(s.Count)
		log.Printf("[prof] %-8s count=%d total=%v avg=%v max=%v", label, s.Count, s.Total, avg, s.Max)
	}
	if measure.Enabled {
		for k, v := range measureutil.SnapshotAndReset() {
			log.Printf("[measure] %s = %d bytes", k, v)
		}
	}
	if okCount != *rounds {
		os.Exit(1)
	}
}
