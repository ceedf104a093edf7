package statemap_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kvarnsen/fmex/internal/catalog"
	"github.com/kvarnsen/fmex/internal/statemap"
)

var _ = Describe("InitialName", func() {
	DescribeTable("derives the initial-value name for every supported key shape",
		func(key, want string) {
			got, err := statemap.InitialName(key)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("plain key", "bioreactor.V", "bioreactor.V_start"),
		Entry("one-digit index", "bioreactor.m[1]", "bioreactor.m_start[1]"),
		Entry("two-digit index", "bioreactor.m[12]", "bioreactor.m_start[12]"),
		Entry("three-digit index", "bioreactor.m[123]", "bioreactor.m_start[123]"),
		Entry("integrator block", "reactor.control_I.y", "reactor.cI_start"),
		Entry("derivative block", "reactor.control_D.x", "reactor.cD_start"),
		Entry("dotted plain key", "bioreactor.culture.q", "bioreactor.culture.q_start"),
	)

	It("rejects an index wider than three digits", func() {
		_, err := statemap.InitialName("bioreactor.m[1234]")
		Expect(err).To(MatchError(statemap.ErrStateVectorSize))
	})
})

var _ = Describe("States", func() {
	newCatalog := func() *catalog.Catalog {
		cat, err := catalog.New([]catalog.Variable{
			{Name: "bioreactor.V", Causality: catalog.CausalityLocal, Variability: catalog.VariabilityContinuous},
			{Name: "bioreactor.m[1]", Causality: catalog.CausalityLocal, Variability: catalog.VariabilityContinuous},
			{Name: "der(bioreactor.V)", DerivativeOf: "bioreactor.V",
				Causality: catalog.CausalityLocal, Variability: catalog.VariabilityContinuous},
			{Name: "der(bioreactor.m[1])", DerivativeOf: "bioreactor.m[1]",
				Causality: catalog.CausalityLocal, Variability: catalog.VariabilityContinuous},
			{Name: "bioreactor.c[1]", Causality: catalog.CausalityLocal, Variability: catalog.VariabilityContinuous},
		})
		Expect(err).NotTo(HaveOccurred())
		return cat
	}

	It("discovers exactly the derivative-linked variables", func() {
		states := statemap.NewStates(newCatalog())
		Expect(states.Keys()).To(Equal([]string{"bioreactor.V", "bioreactor.m[1]"}))
		Expect(states.Has("bioreactor.c[1]")).To(BeFalse())
	})

	It("starts with no carried values and mutates only values", func() {
		states := statemap.NewStates(newCatalog())
		_, ok := states.Value("bioreactor.V")
		Expect(ok).To(BeFalse())

		Expect(states.Set("bioreactor.V", 2.5)).To(Succeed())
		v, ok := states.Value("bioreactor.V")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(2.5))

		Expect(states.Set("bioreactor.c[1]", 1.0)).NotTo(Succeed())
		Expect(states.Keys()).To(HaveLen(2))
	})

	It("derives a total initial-name mapping", func() {
		states := statemap.NewStates(newCatalog())
		names, err := states.InitialNames()
		Expect(err).NotTo(HaveOccurred())
		Expect(names).To(Equal(map[string]string{
			"bioreactor.V":    "bioreactor.V_start",
			"bioreactor.m[1]": "bioreactor.m_start[1]",
		}))
	})
})

var _ = Describe("Locations", func() {
	It("rejects duplicate symbols but allows duplicate locations", func() {
		l := statemap.NewLocations()
		Expect(l.Add("Y", "bioreactor.culture.Y")).To(Succeed())
		Expect(l.Add("yield", "bioreactor.culture.Y")).To(Succeed())
		Expect(l.Add("Y", "elsewhere")).To(MatchError(statemap.ErrDuplicateSymbol))

		loc, ok := l.Resolve("yield")
		Expect(ok).To(BeTrue())
		Expect(loc).To(Equal("bioreactor.culture.Y"))
	})

	It("keeps read-only entries out of the settable set", func() {
		l := statemap.NewLocations()
		Expect(l.Add("Y", "bioreactor.culture.Y")).To(Succeed())
		Expect(l.AddReadOnly("mu", "bioreactor.culture.mu")).To(Succeed())

		Expect(l.Settable("Y")).To(BeTrue())
		Expect(l.Settable("mu")).To(BeFalse())
		Expect(l.Names()).To(Equal([]string{"Y", "mu"}))
	})

	It("reverse-resolves the first symbol in sorted order", func() {
		l := statemap.NewLocations()
		Expect(l.Add("b", "loc")).To(Succeed())
		Expect(l.Add("a", "loc")).To(Succeed())
		sym, ok := l.Symbol("loc")
		Expect(ok).To(BeTrue())
		Expect(sym).To(Equal("a"))
	})
})
