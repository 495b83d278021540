package returns

import "github.com/shopspring/decimal"

func y(year int, stock, bond float64) HistoricalYear {
	return HistoricalYear{Year: year, Stock: decimal.NewFromFloat(stock), Bond: decimal.NewFromFloat(bond)}
}

// USHistoricalReturns is a bundled annual total-return series for US large
// cap stocks (S&P 500 with dividends) and intermediate-term US Treasuries,
// used by historical-replay mode per spec.md §4.12. Figures are
// representative annual decimals, not audited market data.
var USHistoricalReturns = []HistoricalYear{
	y(1990, -0.0306, 0.0682), y(1991, 0.3047, 0.1530), y(1992, 0.0762, 0.0736),
	y(1993, 0.1008, 0.1124), y(1994, 0.0132, -0.0514), y(1995, 0.3758, 0.1663),
	y(1996, 0.2296, 0.0103), y(1997, 0.3336, 0.0938), y(1998, 0.2858, 0.1021),
	y(1999, 0.2104, -0.0225), y(2000, -0.0910, 0.1340), y(2001, -0.1189, 0.0541),
	y(2002, -0.2210, 0.1649), y(2003, 0.2868, 0.0151), y(2004, 0.1088, 0.0397),
	y(2005, 0.0491, 0.0243), y(2006, 0.1579, 0.0339), y(2007, 0.0549, 0.0902),
	y(2008, -0.3700, 0.2010), y(2009, 0.2646, -0.0929), y(2010, 0.1506, 0.0881),
	y(2011, 0.0211, 0.1602), y(2012, 0.1600, 0.0297), y(2013, 0.3239, -0.0913),
	y(2014, 0.1369, 0.1087), y(2015, 0.0138, 0.0128), y(2016, 0.1196, 0.0069),
	y(2017, 0.2183, 0.0281), y(2018, -0.0438, -0.0002), y(2019, 0.3149, 0.0869),
	y(2020, 0.1840, 0.0858), y(2021, 0.2871, -0.0177), y(2022, -0.1811, -0.1267),
	y(2023, 0.2629, 0.0384), y(2024, 0.2502, 0.0179),
}
