package services

import (
	"math/rand"

	"go.uber.org/atomic"

	"folivix/internal/models"
)

type DiseaseServiceInterface interface {
	GetDiseaseInfo() []models.DiseaseInfo
	CurrentTip() string
	RotateTip()
	WatchTip() (<-chan string, func())
	Close()
}

// DiseaseService serves the static disease reference catalog and the
// rotating agronomy tip. The tip advances on a schedule owned by the app;
// the service itself only holds the position.
type DiseaseService struct {
	tips    []string
	catalog []models.DiseaseInfo
	idx     *atomic.Int32
	tip     *models.State[string]
}

func NewDiseaseService() DiseaseServiceInterface {
	ds := &DiseaseService{
		tips:    agronomyTips,
		catalog: diseaseCatalog,
		idx:     atomic.NewInt32(int32(rand.Intn(len(agronomyTips)))),
	}
	ds.tip = models.NewState(ds.tips[ds.idx.Load()])
	return ds
}

func (ds *DiseaseService) GetDiseaseInfo() []models.DiseaseInfo {
	out := make([]models.DiseaseInfo, len(ds.catalog))
	copy(out, ds.catalog)
	return out
}

func (ds *DiseaseService) CurrentTip() string {
	return ds.tip.Get()
}

func (ds *DiseaseService) RotateTip() {
	next := ds.idx.Inc() % int32(len(ds.tips))
	ds.tip.Set(ds.tips[next])
}

func (ds *DiseaseService) WatchTip() (<-chan string, func()) {
	return ds.tip.Watch()
}

func (ds *DiseaseService) Close() {
	ds.tip.Close()
}

var agronomyTips = []string{
	"El maíz es uno de los cultivos más importantes a nivel mundial, con más de 1.000 millones de toneladas producidas anualmente.",
	"La roya común puede reducir el rendimiento del maíz hasta en un 45% en condiciones severas.",
	"La rotación de cultivos es una estrategia efectiva para reducir la incidencia de enfermedades foliares.",
	"El monitoreo temprano de enfermedades puede ahorrar hasta un 30% en costos de tratamiento.",
	"Las variedades híbridas de maíz suelen tener mayor resistencia a enfermedades foliares.",
}

var diseaseCatalog = []models.DiseaseInfo{
	{
		Name:        "Roya común",
		Description: "Causada por el hongo Puccinia sorghi. Se caracteriza por pústulas de color marrón rojizo en ambas caras de las hojas.",
		DetailedDescription: "La roya común es una enfermedad foliar del maíz con amplia distribución mundial.\n\n" +
			"Patógeno: Causada por el hongo Puccinia sorghi, un patógeno biotrófico.\n\n" +
			"Síntomas: Pústulas circulares a ovaladas de color marrón-rojizo que aparecen en ambas caras de las hojas. Las pústulas pueden cambiar a color negro al final de la temporada.\n\n" +
			"Impacto: Puede reducir el rendimiento del maíz hasta en un 45% en condiciones severas.\n\n" +
			"Control: Rotación de cultivos, uso de variedades resistentes y aplicación de fungicidas foliares.",
	},
	{
		Name:        "Mancha gris",
		Description: "Causada por el hongo Cercospora zeae-maydis. Produce lesiones rectangulares de color gris a marrón entre las nervaduras de las hojas.",
		DetailedDescription: "La mancha gris es una enfermedad foliar importante en regiones húmedas productoras de maíz.\n\n" +
			"Patógeno: Causada por el hongo Cercospora zeae-maydis.\n\n" +
			"Síntomas: Lesiones rectangulares de color gris a marrón, estrictamente limitadas por las nervaduras de las hojas.\n\n" +
			"Impacto: Puede reducir el rendimiento hasta un 40% en condiciones favorables para la enfermedad.\n\n" +
			"Control: Rotación de cultivos, labranza de conservación, uso de híbridos resistentes y aplicación de fungicidas.",
	},
	{
		Name:        "Tizón foliar del norte",
		Description: "Causada por el hongo Exserohilum turcicum. Produce lesiones grandes, alargadas y elípticas de color gris verdoso a marrón.",
		DetailedDescription: "El tizón foliar del norte es una de las enfermedades más destructivas del maíz en climas templados y húmedos.\n\n" +
			"Patógeno: Causado por el hongo Exserohilum turcicum (antes Helminthosporium turcicum).\n\n" +
			"Síntomas: Lesiones necróticas grandes, alargadas y elípticas, de color gris verdoso a marrón, que pueden llegar a medir de 2 a 15 cm de longitud.\n\n" +
			"Impacto: Puede reducir el rendimiento del maíz hasta en un 50% cuando la infección ocurre antes o durante la floración.\n\n" +
			"Control: Uso de híbridos con resistencia genética, rotación de cultivos, eliminación de residuos y aplicación de fungicidas.",
	},
	{
		Name:        "Mancha foliar Phaeosphaeria",
		Description: "Causada por el hongo Phaeosphaeria maydis. Produce lesiones circulares a oblongas de color pajizo con bordes marrones.",
		DetailedDescription: "La mancha foliar Phaeosphaeria es una enfermedad importante en regiones tropicales y subtropicales.\n\n" +
			"Patógeno: Causada por el hongo Phaeosphaeria maydis (fase sexual) y Phoma maydis (fase asexual).\n\n" +
			"Síntomas: Lesiones circulares a oblongas de color pajizo con bordes marrones bien definidos que pueden fusionarse formando áreas necróticas más grandes.\n\n" +
			"Impacto: En condiciones severas puede causar senescencia prematura de las hojas y reducir el rendimiento hasta en un 60%.\n\n" +
			"Control: Uso de variedades resistentes, rotación de cultivos y aplicación de fungicidas a base de estrobilurinas.",
	},
	{
		Name:        "Roya del sur",
		Description: "Causada por el hongo Puccinia polysora. Produce pústulas pequeñas, circulares a ovales, de color anaranjado a marrón claro.",
		DetailedDescription: "La roya del sur es una enfermedad agresiva en regiones cálidas y húmedas productoras de maíz.\n\n" +
			"Patógeno: Causada por el hongo Puccinia polysora, un patógeno biótrofo específico del maíz.\n\n" +
			"Síntomas: Pústulas pequeñas, circulares a ovales, de color anaranjado a marrón claro, distribuidas principalmente en el haz de las hojas.\n\n" +
			"Impacto: En zonas tropicales y subtropicales puede causar pérdidas de rendimiento de hasta un 70%.\n\n" +
			"Control: Uso de híbridos resistentes, siembra temprana y aplicación de fungicidas protectores y sistémicos.",
	},
	{
		Name:        "Hoja saludable",
		Description: "Una hoja de maíz saludable presenta un color verde uniforme, sin manchas, lesiones o decoloraciones.",
		DetailedDescription: "Las hojas saludables son fundamentales para el crecimiento y productividad óptimos del maíz.\n\n" +
			"Apariencia: Color verde uniforme, textura firme y erecta, sin manchas ni decoloraciones.\n\n" +
			"Importancia: Son los órganos fotosintéticos primarios, responsables de la producción de carbohidratos que se translocan al grano.\n\n" +
			"Prevención: Nutrición balanceada, control preventivo de plagas y enfermedades, manejo adecuado del riego y densidad de siembra óptima.",
	},
}
